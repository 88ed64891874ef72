package importer

import (
	"errors"
	"strconv"
	"strings"

	"antidote/internal/domain"
	"antidote/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handlers maps the entity argument of cmd/import to a row handler.
// Expected CSV columns per entity:
//
//	clinics:    name, city, address, phone, rating
//	doctors:    name, specialty, city, clinic_slug, experience_years, rating
//	procedures: name, category, description, min_price, max_price
//	packages:   clinic_slug, procedure_slug, title, price, discount_price, description
var Handlers = map[string]RowHandler{
	"clinics":    importClinic,
	"doctors":    importDoctor,
	"procedures": importProcedure,
	"packages":   importPackage,
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func importClinic(tx *gorm.DB, record []string) error {
	name := field(record, 0)
	if name == "" {
		return errors.New("clinic name is empty")
	}
	rating, _ := strconv.ParseFloat(field(record, 4), 64)
	clinic := domain.Clinic{
		Name:    name,
		Slug:    utils.Slugify(name),
		City:    strings.ToLower(field(record, 1)),
		Address: field(record, 2),
		Phone:   field(record, 3),
		Rating:  rating,
	}
	// Reruns after a lost checkpoint must not duplicate by slug
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&clinic).Error
}

func importDoctor(tx *gorm.DB, record []string) error {
	name := field(record, 0)
	if name == "" {
		return errors.New("doctor name is empty")
	}
	doctor := domain.Doctor{
		Name:      name,
		Slug:      utils.Slugify(name),
		Specialty: strings.ToLower(field(record, 1)),
		City:      strings.ToLower(field(record, 2)),
	}
	if clinicSlug := field(record, 3); clinicSlug != "" {
		var clinic domain.Clinic
		if err := tx.Where("slug = ?", clinicSlug).First(&clinic).Error; err != nil {
			return errors.New("unknown clinic slug " + clinicSlug)
		}
		doctor.ClinicID = &clinic.ID
	}
	doctor.ExperienceYears, _ = strconv.Atoi(field(record, 4))
	doctor.Rating, _ = strconv.ParseFloat(field(record, 5), 64)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&doctor).Error
}

func importProcedure(tx *gorm.DB, record []string) error {
	name := field(record, 0)
	if name == "" {
		return errors.New("procedure name is empty")
	}
	minPrice, _ := strconv.ParseInt(field(record, 3), 10, 64)
	maxPrice, _ := strconv.ParseInt(field(record, 4), 10, 64)
	proc := domain.Procedure{
		Name:        name,
		Slug:        utils.Slugify(name),
		Category:    strings.ToLower(field(record, 1)),
		Description: field(record, 2),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&proc).Error
}

func importPackage(tx *gorm.DB, record []string) error {
	var clinic domain.Clinic
	if err := tx.Where("slug = ?", field(record, 0)).First(&clinic).Error; err != nil {
		return errors.New("unknown clinic slug " + field(record, 0))
	}
	var proc domain.Procedure
	if err := tx.Where("slug = ?", field(record, 1)).First(&proc).Error; err != nil {
		return errors.New("unknown procedure slug " + field(record, 1))
	}
	title := field(record, 2)
	if title == "" {
		return errors.New("package title is empty")
	}
	price, err := strconv.ParseInt(field(record, 3), 10, 64)
	if err != nil || price <= 0 {
		return errors.New("invalid package price")
	}
	pkg := domain.Package{
		ClinicID:    clinic.ID,
		ProcedureID: proc.ID,
		Title:       title,
		Slug:        utils.Slugify(clinic.Slug + " " + title),
		Price:       price,
		Description: field(record, 5),
	}
	if dp, err := strconv.ParseInt(field(record, 4), 10, 64); err == nil && dp > 0 {
		pkg.DiscountPrice = &dp
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(&pkg).Error
}
