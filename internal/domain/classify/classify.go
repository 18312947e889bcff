// Package classify holds the small rule tables used to bucket records:
// company size, formality, credential level, saturation alerts and
// critical-program types.
package classify

import (
	"strings"

	"github.com/okian/gradpulse/internal/domain/model"
)

// Company size buckets.
const (
	SizeMicro  = "Microempresa (1-10)"
	SizeSmall  = "Pequeña (11-50)"
	SizeMedium = "Mediana (51-200)"
	SizeLarge  = "Grande (200+)"
)

// SizeOrder is the display order of the company size buckets.
var SizeOrder = []string{SizeMicro, SizeSmall, SizeMedium, SizeLarge}

const (
	microMax  = 10
	smallMax  = 50
	mediumMax = 200
)

// CompanySize buckets an employer headcount; bounds are inclusive.
func CompanySize(headcount float64) string {
	switch {
	case headcount <= microMax:
		return SizeMicro
	case headcount <= smallMax:
		return SizeSmall
	case headcount <= mediumMax:
		return SizeMedium
	default:
		return SizeLarge
	}
}

var accents = strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U")

func fold(s string) string {
	return accents.Replace(strings.ToUpper(strings.TrimSpace(s)))
}

// Formality maps the raw formality cell onto the canonical categories. Older
// extracts use EMPLEO FORMAL / EMPLEO NO FORMAL; those map onto dependent and
// unknown respectively.
func Formality(raw string) model.FormalStatus {
	v := fold(raw)
	switch {
	case v == "":
		return model.FormalUnknown
	case strings.Contains(v, "NO FORMAL"):
		return model.FormalUnknown
	case strings.Contains(v, "VOLUNTARI"):
		return model.VoluntaryAffiliate
	case strings.Contains(v, "DEPENDENCIA"), v == "EMPLEO FORMAL":
		return model.FormalDependent
	default:
		return model.FormalUnknown
	}
}

// Credential classifies a title level label such as "TERCER NIVEL DE GRADO".
func Credential(label string) model.Credential {
	v := fold(label)
	switch {
	case strings.Contains(v, "TERCER"):
		return model.Undergraduate
	case strings.Contains(v, "CUARTO"):
		return model.Postgraduate
	default:
		return model.CredentialOther
	}
}

// Saturation alert levels.
const (
	AlertHigh   = "Alta"
	AlertMedium = "Media"
	AlertNone   = "Sin Alerta"
)

// SaturationAlert rates a program-cohort by graduate volume and the share of
// graduates outside formal employment.
func SaturationAlert(graduates int, nonFormalShare float64) string {
	switch {
	case graduates > 50 && nonFormalShare > 0.5:
		return AlertHigh
	case graduates > 30 && nonFormalShare > 0.3:
		return AlertMedium
	default:
		return AlertNone
	}
}

// Critical program types.
const (
	CriticalBoth    = "Ambas"
	CriticalLowRate = "Tasa baja"
	CriticalDecline = "Tendencia descendente"
)

// CriticalType names why a program is flagged; ok is false when it is not.
func CriticalType(lowRate, declining bool) (string, bool) {
	switch {
	case lowRate && declining:
		return CriticalBoth, true
	case lowRate:
		return CriticalLowRate, true
	case declining:
		return CriticalDecline, true
	default:
		return "", false
	}
}
