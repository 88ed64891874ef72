package seo

import (
	"strconv"

	"antidote/internal/domain"
)

const schemaContext = "https://schema.org"

// ClinicSchema builds a JSON-LD MedicalClinic document for a clinic page
func ClinicSchema(clinic *domain.Clinic, baseURL string) map[string]any {
	doc := map[string]any{
		"@context": schemaContext,
		"@type":    "MedicalClinic",
		"name":     clinic.Name,
		"url":      baseURL + "/clinics/" + clinic.Slug,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"streetAddress":   clinic.Address,
			"addressLocality": clinic.City,
			"addressCountry":  "IN",
		},
	}
	if clinic.Phone != "" {
		doc["telephone"] = clinic.Phone
	}
	if clinic.ReviewCount > 0 {
		doc["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": strconv.FormatFloat(clinic.Rating, 'f', 1, 64),
			"reviewCount": clinic.ReviewCount,
		}
	}
	return doc
}

// DoctorSchema builds a JSON-LD Physician document for a doctor page
func DoctorSchema(doctor *domain.Doctor, baseURL string) map[string]any {
	return map[string]any{
		"@context":         schemaContext,
		"@type":            "Physician",
		"name":             doctor.Name,
		"url":              baseURL + "/doctors/" + doctor.Slug,
		"medicalSpecialty": doctor.Specialty,
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": doctor.City,
			"addressCountry":  "IN",
		},
	}
}

// ProcedureSchema builds a JSON-LD MedicalProcedure document
func ProcedureSchema(proc *domain.Procedure, baseURL string) map[string]any {
	return map[string]any{
		"@context":    schemaContext,
		"@type":       "MedicalProcedure",
		"name":        proc.Name,
		"url":         baseURL + "/procedures/" + proc.Slug,
		"description": proc.Description,
		"procedureType": map[string]any{
			"@type": "MedicalProcedureType",
			"name":  proc.Category,
		},
	}
}

// PackageSchema builds a JSON-LD Product document with an INR offer
func PackageSchema(pkg *domain.Package, baseURL string) map[string]any {
	return map[string]any{
		"@context":    schemaContext,
		"@type":       "Product",
		"name":        pkg.Title,
		"url":         baseURL + "/packages/" + pkg.Slug,
		"description": pkg.Description,
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         strconv.FormatInt(pkg.EffectivePrice(), 10),
			"priceCurrency": "INR",
			"availability":  "https://schema.org/InStock",
		},
	}
}
