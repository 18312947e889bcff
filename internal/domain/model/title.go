package model

import "time"

// Credential is the coarse academic level of a title.
type Credential int

const (
	CredentialOther Credential = iota
	Undergraduate
	Postgraduate
)

func (c Credential) String() string {
	switch c {
	case Undergraduate:
		return "Pregrado"
	case Postgraduate:
		return "Posgrado"
	default:
		return "Otro"
	}
}

// TitleRecord is one academic title awarded to one person.
type TitleRecord struct {
	PersonID     string
	Institution  string
	Faculty      string
	Program      string
	LevelLabel   string
	Credential   Credential
	RegisteredAt time.Time
}
