// Package docs provides generated OpenAPI documentation.
//
// docr API
//
//	@title			docr API
//	@version		1.0
//	@description	OCR service API for processing documents via the Mistral OCR API.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/docr
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8000
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/docr/serve.go -o ./swagger --parseDependency --parseInternal
