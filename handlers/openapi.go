package handlers

import (
	"net/http"

	"github.com/kartliga/kart-league/docs"
)

// ServeOpenAPISpec отдаёт OpenAPI-описание для Swagger UI.
func ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(docs.OpenAPISpec)
}
