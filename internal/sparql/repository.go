package sparql

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"text/template"

	"github.com/ingham-physics/auscat-util/internal/logger"
	"github.com/ingham-physics/auscat-util/internal/metrics"
)

// repositoryTemplate is the rdf4j memory-store repository description,
// parameterized by repository ID.
var repositoryTemplate = template.Must(template.New("createrepo").Parse(`@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#>.
@prefix rep: <http://www.openrdf.org/config/repository#>.
@prefix sr: <http://www.openrdf.org/config/repository/sail#>.
@prefix sail: <http://www.openrdf.org/config/sail#>.
@prefix ms: <http://www.openrdf.org/config/sail/memory#>.
[] a rep:Repository ;
   rep:repositoryID "{{ .Repository }}" ;
   rdfs:label "{{ .Repository }}" ;
   rep:repositoryImpl [
      rep:repositoryType "openrdf:SailRepository" ;
      sr:sailImpl [
      sail:sailType "openrdf:MemoryStore" ;
      ms:persist true ;
      ms:syncDelay 120
      ]
   ].
`))

// RepositoryDescriptor renders the Turtle repository description for this
// client's repository ID.
func (c *Client) RepositoryDescriptor() (string, error) {
	var buf bytes.Buffer
	err := repositoryTemplate.Execute(&buf, map[string]string{
		"Repository": c.endpoint.Repository,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render repository descriptor: %w", err)
	}
	return buf.String(), nil
}

// CreateRepository provisions the repository by staging the rendered
// descriptor in a temporary Turtle file and PUTting it to the query endpoint.
// The staging file is removed afterwards.
func (c *Client) CreateRepository(ctx context.Context) error {
	l := logger.FromContext(ctx)

	descriptor, err := c.RepositoryDescriptor()
	if err != nil {
		return err
	}

	staging, err := os.CreateTemp("", "createrepo-*.ttl")
	if err != nil {
		return fmt.Errorf("failed to stage repository descriptor: %w", err)
	}
	defer os.Remove(staging.Name())

	if _, err := staging.WriteString(descriptor); err != nil {
		staging.Close()
		return fmt.Errorf("failed to write repository descriptor: %w", err)
	}
	if err := staging.Close(); err != nil {
		return fmt.Errorf("failed to flush repository descriptor: %w", err)
	}
	l.Debug().Str("file", staging.Name()).Msg("repository descriptor staged")

	op := func(ctx context.Context) error {
		f, err := os.Open(staging.Name())
		if err != nil {
			return fmt.Errorf("failed to reopen repository descriptor: %w", err)
		}
		defer f.Close()

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint.QueryURL, f)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "text/turtle")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to reach endpoint %s: %w", c.endpoint.QueryURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("endpoint %s returned %s", c.endpoint.QueryURL, resp.Status)
		}
		return nil
	}

	if err := c.breaker.Execute(ctx, op); err != nil {
		metrics.RecordSparql("create", "error")
		return err
	}
	metrics.RecordSparql("create", "success")

	l.Info().Str("repository", c.endpoint.Repository).Msg("repository created")
	return nil
}
