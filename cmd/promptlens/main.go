package main

//	@title						PromptLens API
//	@version					0.1.0
//	@description				Token-budgeted prompt evaluation and rewording.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token. Format: "Bearer {token}"

import (
	"fmt"
	"os"

	_ "github.com/HerbHall/promptlens/api/swagger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorIcon, err)
		os.Exit(1)
	}
}
