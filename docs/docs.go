// Package docs содержит OpenAPI-описание HTTP API. Файл ведётся
// вручную и отдаётся по /swagger/doc.json для Swagger UI.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
