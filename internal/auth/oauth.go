// Package auth runs the Strava OAuth flow and keeps tokens fresh in the store.
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// Strava OAuth endpoints
const (
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scope is what sync needs: private runs and their streams. Strava takes
// scopes as one comma-separated value.
const Scope = "read,activity:read_all"

// Config holds the Strava API application credentials. RedirectURL defaults
// to CallbackURL.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// CallbackURL is the redirect served by Authenticate's local listener
func CallbackURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", CallbackPort)
}

// NewOAuthConfig builds the oauth2 client config for Strava
func NewOAuthConfig(cfg Config) *oauth2.Config {
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = CallbackURL()
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirect,
		Scopes:      []string{Scope},
	}
}

// Result is a completed authorization
type Result struct {
	Token       *oauth2.Token
	AthleteID   int64
	AthleteName string
}

// newResult reads the athlete summary Strava embeds in the token response
func newResult(token *oauth2.Token) *Result {
	r := &Result{Token: token}
	athlete, ok := token.Extra("athlete").(map[string]any)
	if !ok {
		return r
	}
	if id, ok := athlete["id"].(float64); ok {
		r.AthleteID = int64(id)
	}
	var parts []string
	for _, key := range []string{"firstname", "lastname"} {
		if s, ok := athlete[key].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	r.AthleteName = strings.Join(parts, " ")
	return r
}

// Athlete describes who authorized, for messages
func (r *Result) Athlete() string {
	if r.AthleteName != "" {
		return r.AthleteName
	}
	return fmt.Sprintf("athlete %d", r.AthleteID)
}
