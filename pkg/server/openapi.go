package server

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/invopop/yaml"
)

// openAPIDoc describes the REST surface from the live registry, so the
// document never drifts from the registered tools.
func (s *Server) openAPIDoc() (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",

		Info: &openapi3.Info{
			Title:       s.name,
			Version:     s.version,
			Description: "DeFi Llama request-forwarding gateway",
		},

		Paths: openapi3.NewPaths(),
	}

	for _, t := range s.registry.Tools() {
		schema := new(openapi3.Schema)

		data, err := json.Marshal(t.Schema)

		if err != nil {
			return nil, err
		}

		if err := schema.UnmarshalJSON(data); err != nil {
			return nil, err
		}

		doc.Paths.Set("/tools/"+t.Name, &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: t.Name,
				Summary:     t.Description,

				RequestBody: &openapi3.RequestBodyRef{
					Value: openapi3.NewRequestBody().WithJSONSchema(schema),
				},

				Responses: jsonResponses(),
			},
		})
	}

	routes := []struct {
		path      string
		operation string
		summary   string
		param     string
	}{
		{"/protocols", "list_protocols", "List DeFi protocol summaries", ""},
		{"/protocol/{protocol}", "protocol_detail", "Per-chain TVL breakdown with protocol metadata", "protocol"},
		{"/chain/{chain}", "chain_tvl", "Historical TVL series for a chain", "chain"},
		{"/token/{token}", "token_prices", "Current token prices", "token"},
		{"/pools", "list_pools", "List liquidity pool summaries", ""},
		{"/pool/{pool}", "pool_tvl", "Chart data for a pool", "pool"},
	}

	for _, route := range routes {
		operation := &openapi3.Operation{
			OperationID: route.operation,
			Summary:     route.summary,
			Responses:   jsonResponses(),
		}

		if route.param != "" {
			operation.Parameters = openapi3.Parameters{
				&openapi3.ParameterRef{
					Value: openapi3.NewPathParameter(route.param).WithSchema(openapi3.NewStringSchema()),
				},
			}
		}

		doc.Paths.Set(route.path, &openapi3.PathItem{Get: operation})
	}

	return doc, nil
}

func jsonResponses() *openapi3.Responses {
	responses := openapi3.NewResponses()

	responses.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Upstream data, possibly reshaped").WithJSONSchema(openapi3.NewSchema()),
	})

	return responses
}

func (s *Server) handleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := s.openAPIDoc()

	if err != nil {
		s.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := s.openAPIDoc()

	if err != nil {
		s.respondError(w, err)
		return
	}

	data, err := yaml.Marshal(doc)

	if err != nil {
		s.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(data)
}
