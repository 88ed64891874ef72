package seo

import (
	"encoding/xml"
	"time"

	"antidote/internal/domain"

	"gorm.io/gorm"
)

// sitemap XML schema
type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// staticPages always present in the sitemap
var staticPages = []string{"", "/community", "/procedures", "/clinics", "/doctors"}

// GenerateSitemap renders sitemap.xml from clinic, doctor, procedure and
// package slugs
func GenerateSitemap(db *gorm.DB, baseURL string) ([]byte, error) {
	today := time.Now().Format("2006-01-02")
	set := urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc: baseURL + p, LastMod: today, ChangeFreq: "daily", Priority: "1.0",
		})
	}

	var clinicSlugs, doctorSlugs, procSlugs, pkgSlugs []string
	if err := db.Model(&domain.Clinic{}).Order("slug").Pluck("slug", &clinicSlugs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Doctor{}).Order("slug").Pluck("slug", &doctorSlugs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Procedure{}).Order("slug").Pluck("slug", &procSlugs).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Package{}).Order("slug").Pluck("slug", &pkgSlugs).Error; err != nil {
		return nil, err
	}

	appendAll := func(prefix string, slugs []string, priority string) {
		for _, s := range slugs {
			set.URLs = append(set.URLs, sitemapURL{
				Loc: baseURL + prefix + s, LastMod: today, ChangeFreq: "weekly", Priority: priority,
			})
		}
	}
	appendAll("/clinics/", clinicSlugs, "0.8")
	appendAll("/doctors/", doctorSlugs, "0.7")
	appendAll("/procedures/", procSlugs, "0.9")
	appendAll("/packages/", pkgSlugs, "0.8")

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
