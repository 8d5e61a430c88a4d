package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mercadopublico-scraper/models"
	"mercadopublico-scraper/utils"
)

type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate summarises a price pass. attempted is the number of products the
// pass tried to price; the difference to len(summaries) counts as skipped.
func (s *ReportService) Generate(attempted int, summaries []*models.PriceSummary) *models.PassReport {
	report := &models.PassReport{
		Attempted:  attempted,
		Priced:     len(summaries),
		RegionWins: make(map[string]int),
	}
	if attempted > len(summaries) {
		report.Skipped = attempted - len(summaries)
	}

	if len(summaries) == 0 {
		return report
	}

	var total int64
	for _, ps := range summaries {
		total += ps.MinPrice
		if report.Cheapest == nil || ps.MinPrice < report.Cheapest.MinPrice {
			report.Cheapest = ps
		}
		if report.MostExpensive == nil || ps.MinPrice > report.MostExpensive.MinPrice {
			report.MostExpensive = ps
		}
		if ps.BestRegion != "" {
			report.RegionWins[ps.BestRegion]++
		}
	}

	report.MinPrice = report.Cheapest.MinPrice
	report.MaxPrice = report.MostExpensive.MinPrice
	report.AveragePrice = round2(float64(total) / float64(len(summaries)))

	s.logger.Debug("[report] %d priced, %d skipped, %d regions won",
		report.Priced, report.Skipped, len(report.RegionWins))
	return report
}

func (s *ReportService) Print(w io.Writer, r *models.PassReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  PRICE PASS REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Products attempted : \033[1m%d\033[0m\n", r.Attempted)
	fmt.Fprintf(w, "  Products priced    : \033[1m%d\033[0m\n", r.Priced)
	fmt.Fprintf(w, "  Skipped (no price) : \033[1m%d\033[0m\n", r.Skipped)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Minimum Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.Priced > 0 {
		fmt.Fprintf(w, "  Average : \033[1;32m$%.2f\033[0m\n", r.AveragePrice)
		fmt.Fprintf(w, "  Lowest  : \033[1;32m$%d\033[0m  %s\n", r.MinPrice, truncate(r.Cheapest.Name, 36))
		fmt.Fprintf(w, "  Highest : \033[1;32m$%d\033[0m  %s\n", r.MaxPrice, truncate(r.MostExpensive.Name, 36))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Cheapest Region Wins\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RegionWins) == 0 {
		fmt.Fprintf(w, "  No region data\n")
	} else {
		type regionCount struct {
			region string
			count  int
		}
		var regions []regionCount
		for region, cnt := range r.RegionWins {
			regions = append(regions, regionCount{region, cnt})
		}
		sort.Slice(regions, func(i, j int) bool {
			if regions[i].count != regions[j].count {
				return regions[i].count > regions[j].count
			}
			return regions[i].region < regions[j].region
		})
		for _, rc := range regions {
			bar := strings.Repeat("█", min(rc.count, 30))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(rc.region, 28), bar, rc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
