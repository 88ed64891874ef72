package seo

import (
	"testing"

	"antidote/internal/domain"
)

func TestClinicSchema(t *testing.T) {
	clinic := &domain.Clinic{
		Name:        "Derma Care",
		Slug:        "derma-care",
		City:        "pune",
		Address:     "12 MG Road",
		Rating:      4.6,
		ReviewCount: 38,
	}
	doc := ClinicSchema(clinic, "https://antidote.fit")
	if doc["@type"] != "MedicalClinic" {
		t.Fatalf("expected MedicalClinic, got %v", doc["@type"])
	}
	if doc["url"] != "https://antidote.fit/clinics/derma-care" {
		t.Fatalf("unexpected url %v", doc["url"])
	}
	rating, ok := doc["aggregateRating"].(map[string]any)
	if !ok {
		t.Fatal("expected aggregateRating for clinic with reviews")
	}
	if rating["ratingValue"] != "4.6" {
		t.Fatalf("unexpected rating value %v", rating["ratingValue"])
	}
}

func TestClinicSchemaOmitsEmptyRating(t *testing.T) {
	doc := ClinicSchema(&domain.Clinic{Name: "New Clinic", Slug: "new-clinic"}, "https://antidote.fit")
	if _, ok := doc["aggregateRating"]; ok {
		t.Fatal("expected no aggregateRating without reviews")
	}
}

func TestPackageSchemaUsesEffectivePrice(t *testing.T) {
	discount := int64(45000)
	pkg := &domain.Package{
		Title:         "Rhinoplasty Premium",
		Slug:          "derma-care-rhinoplasty-premium",
		Price:         60000,
		DiscountPrice: &discount,
	}
	doc := PackageSchema(pkg, "https://antidote.fit")
	offer, ok := doc["offers"].(map[string]any)
	if !ok {
		t.Fatal("expected offers block")
	}
	if offer["price"] != "45000" {
		t.Fatalf("expected discounted price 45000, got %v", offer["price"])
	}
	if offer["priceCurrency"] != "INR" {
		t.Fatalf("expected INR, got %v", offer["priceCurrency"])
	}
}

func TestDoctorSchema(t *testing.T) {
	doc := DoctorSchema(&domain.Doctor{
		Name:      "Dr. Mehta",
		Slug:      "dr-mehta",
		Specialty: "rhinoplasty",
		City:      "delhi",
	}, "https://antidote.fit")
	if doc["@type"] != "Physician" {
		t.Fatalf("expected Physician, got %v", doc["@type"])
	}
	if doc["medicalSpecialty"] != "rhinoplasty" {
		t.Fatalf("unexpected specialty %v", doc["medicalSpecialty"])
	}
}
