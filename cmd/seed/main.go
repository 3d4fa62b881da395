// Seed tool for loading demo personas into a running ChittyTrust instance.
//
// Usage:
//   go run cmd/seed/main.go -url http://localhost:8080 -tenant demo
//
// This tool:
//  1. Registers the built-in demo personas (alice, bob, charlie)
//  2. Records each persona's prepared event history
//  3. Triggers a trust calculation per persona
//  4. Prints the resulting dimension and output scores
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
	"github.com/chittyos/chittytrust/internal/persona"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "ChittyTrust base URL")
	tenantID := flag.String("tenant", "demo", "Tenant ID for requests")
	only := flag.String("persona", "", "Seed a single persona by ID (default: all)")
	calculate := flag.Bool("calculate", true, "Trigger a trust calculation after seeding")
	flag.Parse()

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║           CHITTYTRUST SEED - Demo Personas                    ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nURL:     %s\n", *baseURL)
	fmt.Printf("Tenant:  %s\n", *tenantID)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: ChittyTrust not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure ChittyTrust is running:")
		fmt.Println("  go run cmd/chittytrust/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ ChittyTrust is healthy")
	fmt.Println()

	personas := persona.Demo()
	if *only != "" {
		p := persona.ByID(*only)
		if p == nil {
			fmt.Printf("ERROR: unknown persona %q\n", *only)
			os.Exit(1)
		}
		personas = []persona.Persona{*p}
	}

	client := &http.Client{Timeout: 10 * time.Second}

	for _, p := range personas {
		fmt.Printf("Seeding %s (%s)...\n", p.ID, p.Description)

		if err := postJSON(client, *baseURL+"/entities", *tenantID, p.Entity, nil); err != nil {
			fmt.Printf("  ERROR: failed to register entity: %v\n", err)
			continue
		}
		fmt.Printf("  ✓ entity registered\n")

		for _, ev := range p.Events {
			if err := postJSON(client, *baseURL+"/entities/"+p.ID+"/events", *tenantID, ev, nil); err != nil {
				fmt.Printf("  ERROR: failed to record event: %v\n", err)
			}
		}
		fmt.Printf("  ✓ %d events recorded\n", len(p.Events))

		if *calculate {
			var result domain.TrustResponse
			if err := postJSON(client, *baseURL+"/trust/"+p.ID+"/calculate", *tenantID, nil, &result); err != nil {
				fmt.Printf("  ERROR: calculation failed: %v\n", err)
				continue
			}
			printResult(&result)
		}
		fmt.Println()
	}

	fmt.Println("Done.")
}

func printResult(r *domain.TrustResponse) {
	fmt.Printf("  Level:      %s\n", r.Level)
	fmt.Printf("  Composite:  %.2f (confidence %.2f)\n", r.Outputs.Composite, r.Confidence)
	fmt.Printf("  Dimensions: source=%.1f temporal=%.1f channel=%.1f outcome=%.1f network=%.1f justice=%.1f\n",
		r.Dimensions.Source, r.Dimensions.Temporal, r.Dimensions.Channel,
		r.Dimensions.Outcome, r.Dimensions.Network, r.Dimensions.Justice)
	fmt.Printf("  Outputs:    people=%.1f legal=%.1f state=%.1f\n",
		r.Outputs.People, r.Outputs.Legal, r.Outputs.State)
	for _, ins := range r.Insights {
		fmt.Printf("  Insight:    [%s] %s\n", ins.Impact, ins.Title)
	}
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func postJSON(client *http.Client, url, tenantID string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
