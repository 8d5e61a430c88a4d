package models

import "time"

// RawProduct holds one product card exactly as harvested from a catalog
// listing page, before any cleaning.
type RawProduct struct {
	ID        string
	Name      string
	Providers string
	Link      string
	Page      int
	ScrapedAt time.Time
}

// Product is the cleaned catalog record stored in cm_productos and used as
// the unit of work for a price pass.
type Product struct {
	ID        string
	Name      string
	Providers int
	Link      string
	Page      int
	UpdatedAt time.Time
}

// PriceSummary is the per-product result of a price pass. It fully replaces
// any earlier summary for the same ProductID.
type PriceSummary struct {
	ProductID    string
	Name         string
	Providers    int
	Link         string
	InternalID   string
	MinPrice     int64
	BestRegion   string
	RegionPrices map[string]int64
	CheckedAt    time.Time
}

// PassReport holds the computed analytics over one price pass.
type PassReport struct {
	Attempted     int
	Priced        int
	Skipped       int
	AveragePrice  float64
	MinPrice      int64
	MaxPrice      int64
	Cheapest      *PriceSummary
	MostExpensive *PriceSummary
	RegionWins    map[string]int
}
