package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/easymed/internal/app"
)

const shutdownTimeout = 10 * time.Second

// @title           EasyMed Auth API
// @version         1.0
// @description     EasyMed provides phone OTP sign-in, registration and administrator access for patients, ASHA workers, doctors and admins.
// @termsOfService  https://easymed.in/terms
// @contact.name    Contact Support
// @contact.url     https://easymed.in/contact
// @contact.email   support@easymed.in
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	application.Stop(ctx)
}
