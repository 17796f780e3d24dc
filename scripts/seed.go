// Seed script for loading demo data into a running Credence server.
// Run with: go run ./scripts/seed.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment
	envFile := os.Getenv("CREDENCE_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	baseURL := os.Getenv("CREDENCE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	c := &client{baseURL: baseURL, apiKey: os.Getenv("API_KEY")}

	// Source network: aggregators fed by two wire agencies, plus an
	// independent on-chain monitor with no upstream at all.
	dependencies := []struct {
		source   string
		upstream []string
	}{
		{"reuters-feed", []string{"reuters"}},
		{"bloomberg-feed", []string{"bloomberg"}},
		{"marketwatch", []string{"reuters", "bloomberg"}},
		{"yahoo-finance", []string{"reuters"}},
	}
	for _, d := range dependencies {
		c.post("/v1/dependencies", map[string]any{"source": d.source, "upstream": d.upstream})
		fmt.Printf("Added dependency: %s <- %v\n", d.source, d.upstream)
	}

	c.post("/v1/integrations", map[string]any{
		"agent":    "signal-desk",
		"upstream": []string{"marketwatch", "chain-monitor"},
	})
	fmt.Println("Integrated agent: signal-desk")

	// One observation, then corroborations from sources with known overlap
	created := c.post("/v1/truths", map[string]any{
		"content":    "BTC breaks 50k",
		"source":     "reuters-feed",
		"confidence": 0.6,
	})
	hash, _ := created["content_hash"].(string)
	if hash == "" {
		log.Fatalf("Truth creation returned no content_hash: %v", created)
	}
	fmt.Printf("Created truth vector: %s\n", hash)

	for _, source := range []string{"bloomberg-feed", "chain-monitor", "marketwatch"} {
		v := c.post("/v1/truths/"+hash+"/corroborate", map[string]any{"source": source})
		fmt.Printf("Corroborated by %s: confidence=%v state=%v\n", source, v["confidence"], v["epistemic_state"])
	}

	// One opportunity so the consensus listing has an entry
	c.post("/v1/opportunities/validate", map[string]any{
		"ticker":     "BTC",
		"thesis":     "momentum continuation above the round number",
		"source":     "signal-desk",
		"confidence": "HIGH",
	})
	fmt.Println("Validated opportunity from signal-desk")

	fmt.Println("\n=== Seed Complete ===")
	fmt.Println("\nTo inspect the results:")
	fmt.Printf("curl %s/v1/truths/%s\n", baseURL, hash)
	fmt.Printf("curl %s/v1/opportunities/consensus\n", baseURL)
	fmt.Printf("curl '%s/v1/independence?sources=reuters-feed,bloomberg-feed,marketwatch'\n", baseURL)
	fmt.Printf("curl '%s/v1/convergences?threshold=0.4'\n", baseURL)
	fmt.Printf("curl %s/v1/audit\n", baseURL)
}

type client struct {
	baseURL string
	apiKey  string
}

func (c *client) post(path string, body map[string]any) map[string]any {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Fatalf("Failed to encode request for %s: %v", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to build request for %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("Failed to decode response from %s: %v", path, err)
	}
	if resp.StatusCode >= 400 {
		log.Fatalf("Request to %s returned %d: %v", path, resp.StatusCode, result)
	}
	return result
}
