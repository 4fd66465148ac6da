package api

import "github.com/uwbench/renewal/internal/domain"

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// CarriersResponse lists the carrier identifiers accepted by the
// calculate endpoint.
type CarriersResponse struct {
	Carriers []domain.Carrier `json:"carriers"`
}
