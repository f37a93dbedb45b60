package panel

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"jobgo-agent/internal/api"
)

// Render writes v as plain text, showing only the active tab.
func Render(w io.Writer, v View) error {
	status := "offline (start the backend with: jobgo serve)"
	if v.Online {
		status = "online"
	}
	fmt.Fprintf(w, "Backend: %s\n", status)
	if v.ScanStatus != "" {
		fmt.Fprintf(w, "Scan: %s\n", v.ScanStatus)
	}
	fmt.Fprintf(w, "\n[%s]\n", v.Tab)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch v.Tab {
	case TabCart:
		renderCompanies(tw, v.Cart, v.CartErr, "Cart is empty.", false)
	case TabCompanies:
		renderCompanies(tw, v.Companies, v.CompaniesErr, "No companies tracked.", true)
	default:
		renderJobs(tw, v)
	}
	return tw.Flush()
}

func renderJobs(w io.Writer, v View) {
	if v.JobsErr != "" {
		fmt.Fprintf(w, "error: %s\n", v.JobsErr)
		return
	}
	if len(v.Jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return
	}

	expanded := map[string]bool{}
	for _, id := range v.Expanded {
		expanded[id] = true
	}
	for _, j := range v.Jobs {
		line := fmt.Sprintf("%s\t%s\t%s\t%s", j.Title, score(j.MatchScore), j.CompanyName, locationOr(j.Location))
		if tags := JobTags(j); len(tags) > 0 {
			line += "\t[" + strings.Join(tags, "] [") + "]"
		}
		fmt.Fprintln(w, line)
		if expanded[j.ID] {
			if j.MatchReason != nil && *j.MatchReason != "" {
				fmt.Fprintf(w, "  why: %s\n", *j.MatchReason)
			}
			if j.URL != "" {
				fmt.Fprintf(w, "  %s\n", j.URL)
			}
		}
	}
}

func renderCompanies(w io.Writer, cs []api.Company, errMsg, empty string, showH1B bool) {
	if errMsg != "" {
		fmt.Fprintf(w, "error: %s\n", errMsg)
		return
	}
	if len(cs) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, c := range cs {
		line := fmt.Sprintf("%s\t%s/%s", c.Name, c.Platform, c.Slug)
		if showH1B && c.SponsorsH1B {
			line += "\tH1B✓"
		}
		fmt.Fprintln(w, line)
	}
}

func score(s *float64) string {
	if s == nil {
		return "--"
	}
	return fmt.Sprintf("%d%%", int(math.Round(*s)))
}

func locationOr(loc *string) string {
	if loc == nil || *loc == "" {
		return "N/A"
	}
	return *loc
}
