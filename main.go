package main

import "baobyte/internal/app"

// @title           Baobyte Accounts API
// @version         1.0
// @description     Registration with email verification, login, Google OAuth2 and password reset.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	app.Run()
}
