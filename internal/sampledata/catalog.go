package sampledata

// program is one academic program of the home institution.
type program struct {
	faculty string
	name    string
	level   string
	offer   string
	// hire is the monthly probability of holding a formal job.
	hire float64
}

var programs = []program{
	{"SALUD", "ENFERMERIA", "GRADO", "PRESENCIAL", 0.82},
	{"SALUD", "MEDICINA", "GRADO", "PRESENCIAL", 0.74},
	{"INGENIERIA", "SISTEMAS", "GRADO", "PRESENCIAL", 0.77},
	{"INGENIERIA", "CIVIL", "GRADO", "PRESENCIAL", 0.58},
	{"NEGOCIOS", "ADMINISTRACION", "GRADO", "EN LINEA", 0.63},
	{"NEGOCIOS", "ECONOMIA", "GRADO", "PRESENCIAL", 0.55},
	{"COMUNICACION", "PERIODISMO", "TECNOLOGIA", "EN LINEA", 0.41},
}

type employer struct {
	taxID     string
	name      string
	sector    string
	headcount int
}

var employers = []employer{
	{"1790010001001", "HOSPITAL METROPOLITANO", "SALUD", 850},
	{"1790010002001", "CLINICA PICHINCHA", "SALUD", 120},
	{"1790010003001", "CONSULTORIO SANTA ANA", "SALUD", 8},
	{"1790010004001", "BANCO DEL PACIFICO", "FINANZAS", 2400},
	{"1790010005001", "COOPERATIVA ANDINA", "FINANZAS", 45},
	{"1790010006001", "CONSTRUCTORA DEL VALLE", "CONSTRUCCION", 180},
	{"1790010007001", "SOFTWARE QUITO", "TECNOLOGIA", 35},
	{"1790010008001", "DATACENTER ANDES", "TECNOLOGIA", 260},
	{"1790010009001", "COMERCIAL LA FAVORITA", "COMERCIO", 5200},
	{"1790010010001", "TIENDA EL ARTESANO", "COMERCIO", 4},
	{"1790010011001", "UNIDAD EDUCATIVA SOLAR", "EDUCACION", 70},
	{"1790010012001", "DIARIO LA HORA", "COMUNICACION", 95},
}

var jobTitles = []string{
	"ANALISTA", "ASISTENTE ADMINISTRATIVO", "ENFERMERO", "MEDICO GENERAL", "DESARROLLADOR",
	"INGENIERO RESIDENTE", "EJECUTIVO DE VENTAS", "DOCENTE", "REDACTOR", "",
}

const homeInstitution = "UNIVERSIDAD DE LAS AMERICAS"

var otherInstitutions = []string{
	"UNIVERSIDAD CENTRAL DEL ECUADOR",
	"PONTIFICIA UNIVERSIDAD CATOLICA DEL ECUADOR",
	"ESCUELA POLITECNICA NACIONAL",
	"UNIVERSIDAD SAN FRANCISCO DE QUITO",
}

var postgradPrograms = []string{
	"MAESTRIA EN SALUD PUBLICA", "MAESTRIA EN ADMINISTRACION DE EMPRESAS", "MAESTRIA EN DERECHO",
	"MAESTRIA EN CIENCIA DE DATOS", "ESPECIALIZACION EN GERENCIA", "MAESTRIA EN EDUCACION",
}

// Header rows as found in the institutional extracts.
var (
	employmentHeader = []string{
		"IdentificacionBanner.1", "AnioGraduacion.1", "regimen.1", "Oferta actual", "FACULTAD", "Carrera.1",
		"CarreraHomologada.1", "Anio.1", "Mes.1", "SALARIO.1", "RUCEMP.1", "NOMEMP.1", "Cantidad de empleados",
		"SECTOR", "Empleo formal", "FECINGAFI.1", "FechaGraduacion.1", "OCUAFI.1",
	}
	titlesHeader = []string{
		"IDENTIFICACION", "INSTITUCIÓN DE EDUCACIÓN SUPERIOR", "FACULTAD", "CARRERA", "NIVEL ACADÉMICA",
		"FECHA DE REGISTRO",
	}
)

const (
	undergradLevel = "TERCER NIVEL DE GRADO"
	postgradLevel  = "CUARTO NIVEL"
)
