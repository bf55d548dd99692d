// Package sparql is a client for SPARQL 1.1 protocol endpoints. Read queries
// go to the query endpoint, updates to the update endpoint; each call is a
// single HTTP request with no session state.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ingham-physics/auscat-util/internal/logger"
	"github.com/ingham-physics/auscat-util/internal/metrics"
	"github.com/ingham-physics/auscat-util/internal/retry"
	"github.com/ingham-physics/auscat-util/internal/table"
)

const (
	acceptJSON = "application/sparql-results+json"
	acceptXML  = "application/sparql-results+xml"
)

// Endpoint identifies a triplestore.
type Endpoint struct {
	// QueryURL is the SPARQL query protocol URL
	QueryURL string
	// UpdateURL is the SPARQL update protocol URL
	UpdateURL string
	// Repository is the repository identifier used for provisioning
	Repository string
}

// Client issues SPARQL queries and updates against one endpoint.
type Client struct {
	endpoint   Endpoint
	httpClient *http.Client
	breaker    *retry.CircuitBreaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the given endpoint.
func NewClient(endpoint Endpoint, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		breaker:    retry.NewCircuitBreaker(5, 30*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sparqlResults is the SPARQL 1.1 JSON results document.
type sparqlResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Query runs a read query and flattens the variable bindings into a table.
// Variables unbound in a row become NULL cells.
func (c *Client) Query(ctx context.Context, queryText string) (*table.Table, error) {
	body, err := c.request(ctx, "query", c.endpoint.QueryURL, "query", queryText, acceptJSON)
	if err != nil {
		return nil, err
	}

	var results sparqlResults
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode SPARQL results: %w", err)
	}

	t := table.New(results.Head.Vars...)
	for _, binding := range results.Results.Bindings {
		cells := make([]any, len(results.Head.Vars))
		for i, v := range results.Head.Vars {
			if b, ok := binding[v]; ok {
				cells[i] = b.Value
			}
		}
		if err := t.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// QueryFile runs the query in the given file, as Query.
func (c *Client) QueryFile(ctx context.Context, queryPath string) (*table.Table, error) {
	queryText, err := readFile(queryPath)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, queryText)
}

// QueryXML runs a read query and returns the raw XML results document.
func (c *Client) QueryXML(ctx context.Context, queryText string) (string, error) {
	body, err := c.request(ctx, "query", c.endpoint.QueryURL, "query", queryText, acceptXML)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// QueryJSON runs a read query and returns the raw JSON results document.
func (c *Client) QueryJSON(ctx context.Context, queryText string) ([]byte, error) {
	return c.request(ctx, "query", c.endpoint.QueryURL, "query", queryText, acceptJSON)
}

// Clear deletes triples. With an empty graph every triple in the default
// graph is removed; with a graph IRI only that graph is cleared, leaving
// others intact.
func (c *Client) Clear(ctx context.Context, graph string) error {
	var update string
	if graph == "" {
		update = "DELETE WHERE { ?s ?p ?o . }"
	} else {
		update = fmt.Sprintf("DELETE WHERE { GRAPH %s { ?s ?p ?o . } }", graphRef(graph))
	}

	l := logger.FromContext(ctx)
	l.Info().Str("graph", graph).Msg("clearing repository")

	_, err := c.request(ctx, "update", c.endpoint.UpdateURL, "update", update, "")
	return err
}

// Insert wraps the serialized triples from the given file in an INSERT DATA
// block, optionally scoped to a named graph, and sends it to the update
// endpoint.
func (c *Client) Insert(ctx context.Context, triplePath, graph string) error {
	triples, err := readFile(triplePath)
	if err != nil {
		return err
	}
	return c.InsertData(ctx, triples, graph)
}

// InsertData is Insert for triples already held in memory.
func (c *Client) InsertData(ctx context.Context, triples, graph string) error {
	var update string
	if graph == "" {
		update = fmt.Sprintf("INSERT DATA {\n%s\n}", triples)
	} else {
		update = fmt.Sprintf("INSERT DATA { GRAPH %s {\n%s\n} }", graphRef(graph), triples)
	}

	l := logger.FromContext(ctx)
	l.Info().Str("graph", graph).Msg("inserting triples")

	_, err := c.request(ctx, "update", c.endpoint.UpdateURL, "update", update, "")
	return err
}

// request sends one form-encoded SPARQL protocol request through the circuit
// breaker and returns the response body.
func (c *Client) request(ctx context.Context, kind, endpoint, param, value, accept string) ([]byte, error) {
	var body []byte
	op := func(ctx context.Context) error {
		form := url.Values{param: {value}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach endpoint %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("endpoint %s returned %s: %s",
				endpoint, resp.Status, strings.TrimSpace(string(data)))
		}
		body = data
		return nil
	}

	if err := c.breaker.Execute(ctx, op); err != nil {
		metrics.RecordSparql(kind, "error")
		return nil, err
	}
	metrics.RecordSparql(kind, "success")
	return body, nil
}

// graphRef formats a graph name as an IRI reference unless the caller
// already supplied one.
func graphRef(graph string) string {
	if strings.HasPrefix(graph, "<") {
		return graph
	}
	return "<" + graph + ">"
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
