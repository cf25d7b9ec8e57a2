package server

import (
	"fmt"
	"io"
	"text/tabwriter"
)

var endpointTable = [][3]string{
	{"GET", "/health", "Health check"},
	{"GET", "/stats", "Server statistics"},
	{"POST", "/tailor", "Upload a resume and generate a tailored version"},
	{"POST", "/analysis/{id}/open", "Open a result for editing"},
	{"GET", "/analysis/{id}", "Result, regeneration status and view"},
	{"PUT", "/analysis/{id}/{statement,skills,style,tab}", "Edit a scalar field or switch tab"},
	{"POST", "/analysis/{id}/{experience,education}", "Append an entry"},
	{"PATCH", "/analysis/{id}/{section}/{index}", "Update an entry"},
	{"POST", "/analysis/{id}/{section}/{index}/bullets", "Append a bullet"},
	{"POST", "/analysis/{id}/regenerate", "Regenerate from the edited result"},
}

// displayServerInfo prints the route table and the security settings
func (s *Server) displayServerInfo(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Available endpoints:")
	for _, e := range endpointTable {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", e[0], e[1], e[2])
	}
	_ = tw.Flush()

	for _, line := range s.securitySummary() {
		_, _ = fmt.Fprintln(w, line)
	}
}

func (s *Server) securitySummary() []string {
	var lines []string

	if n := s.apiKeyCount(); n > 0 {
		lines = append(lines, fmt.Sprintf("API authentication: ENABLED (%d keys)", n))
	} else {
		lines = append(lines, "API authentication: DISABLED, /tailor and /analysis are open to anyone who can reach this port")
	}
	if s.KeyWatcher != nil {
		lines = append(lines, "  keys follow Vault rotation")
	}

	if s.MaxRequestSize > 0 {
		lines = append(lines, fmt.Sprintf("Request size limit: %.1f MB", float64(s.MaxRequestSize)/(1<<20)))
	} else {
		lines = append(lines, "Request size limit: DISABLED")
	}

	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return append(lines, "Rate limiting: DISABLED")
	}
	by := "ip"
	switch {
	case s.RateLimit.ByAPIKey && s.RateLimit.ByIP:
		by = "api key, then ip"
	case s.RateLimit.ByAPIKey:
		by = "api key"
	}
	return append(lines, fmt.Sprintf("Rate limiting: %d requests/min, burst %d, keyed by %s",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity, by))
}
