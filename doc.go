// Package commitsonic provides top-level metadata for the commitsonic API.
//
// @title commitsonic API
// @version 0.1.0
// @description Turns GitHub pushes into musical parameters and streams them to live listeners.
// @BasePath /api
// @securityDefinitions.apikey ListenerAuth
// @in header
// @name Authorization
// @description Provide the listener bearer token as `Bearer <token>`.
package commitsonic
