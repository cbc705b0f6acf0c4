package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

func main() {
	outDir := flag.String("out", "./out", "output directory for rendered layouts")
	flag.Parse()

	resumeModel := sampleResumeModel()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir failed: %v\n", err)
		os.Exit(1)
	}
	for _, layout := range render.Layouts() {
		body, err := render.RenderHTML(resumeModel, layout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render %s failed: %v\n", layout, err)
			os.Exit(1)
		}
		if idx := tokenIndex(string(body)); idx != -1 {
			fmt.Fprintf(os.Stderr, "unresolved template tokens in %s near: %s\n", layout, snippetAround(string(body), idx, 200))
			os.Exit(1)
		}
		path := filepath.Join(*outDir, "sample_resume_"+layout+".html")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK: wrote %s\n", path)
	}

	payload, err := json.MarshalIndent(resumeModel, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "sample_resume_model.json"), payload, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
		os.Exit(1)
	}
}

func sampleResumeModel() model.ResumeModel {
	return model.ResumeModel{
		ResumeID:   "sample",
		TemplateID: "modern-1",
		Title:      "Sample Resume",
		Header: model.ResumeHeader{
			Name:           "Jordan Lee",
			Course:         "B.Tech",
			Branch:         "Computer Science",
			Specialisation: "Distributed Systems",
			Email:          "jordan.lee@example.com",
			Phone:          "+1-555-0102",
			Links: []string{
				"https://www.linkedin.com/in/jordanlee",
				"https://github.com/jordanlee",
			},
		},
		Education: []model.ResumeEducation{
			{Institution: "State Institute of Technology", Degree: "B.Tech", Score: "8.7 CGPA", Start: "2016-08", End: "2020-05"},
		},
		Experience: []model.ResumeExperience{
			{
				Company:     "Acme Logistics",
				Role:        "Backend Engineer",
				Location:    "Austin, TX",
				Start:       "2021-04",
				End:         "Present",
				Description: "Designed a routing service that reduced shipment latency by 18%.",
			},
			{
				Company:     "Blue Harbor Systems",
				Role:        "Software Engineer",
				Location:    "Seattle, WA",
				Start:       "2020-06",
				End:         "2021-03",
				Description: "Built event-driven ingestion pipelines for compliance data feeds.",
			},
		},
		Projects: []model.ResumeProject{
			{Title: "Rate Limiter", Link: "https://github.com/jordanlee/limiter", TechStack: []string{"Go", "Redis"}, Description: "Token bucket limiter shared across API replicas."},
		},
		Skills: []model.ResumeSkill{
			{Name: "Go", Level: "Advanced"},
			{Name: "PostgreSQL", Level: "Intermediate"},
			{Name: "Kubernetes"},
		},
	}
}

func tokenIndex(text string) int {
	if idx := strings.Index(text, "{{"); idx != -1 {
		return idx
	}
	if idx := strings.Index(text, "}}"); idx != -1 {
		return idx
	}
	return -1
}

func snippetAround(text string, pos, maxLen int) string {
	if pos < 0 {
		return ""
	}
	start := max(pos-maxLen/2, 0)
	end := min(start+maxLen, len(text))
	return text[start:end]
}
