// Package interfaces provides type aliases for translator functions.
// It defines common types used throughout the engine for request and response
// transformation operations, maintaining compatibility with the SDK translator
// package.
package interfaces

import sdktranslator "github.com/agrelay/agrelay/sdk/translator"

// Aliases for translator function types.
type TranslateRequestFunc = sdktranslator.RequestTransform

type TranslateResponseFunc = sdktranslator.ResponseStreamTransform

type TranslateResponseNonStreamFunc = sdktranslator.ResponseNonStreamTransform

type TranslateResponse = sdktranslator.ResponseTransform
