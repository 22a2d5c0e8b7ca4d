package main

import (
	"os"

	"github.com/unigate/admissions/internal/pkg/logger"
	"github.com/unigate/admissions/internal/server"
)

// @title Admissions API
// @version 1.0
// @description API for the student admissions portal: applicant wizard, document uploads and the admin review console
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email admissions-support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization, as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Details are logged inside the setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
