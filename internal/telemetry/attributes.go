// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Currency attributes
	SourceCurrencyKey = "currency.source"
	TargetCurrencyKey = "currency.target"
	BaseCurrencyKey   = "currency.base"

	// Conversion attributes
	ConversionAmountKey = "conversion.amount"
	ConversionRateKey   = "conversion.rate"
	ConversionUserKey   = "conversion.user_id"

	// Rate lookup attributes
	RateSourceKey = "rates.source"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ConversionAttributes creates conversion-related span attributes.
func ConversionAttributes(source, target, amount, rate string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SourceCurrencyKey, source),
		attribute.String(TargetCurrencyKey, target),
		attribute.String(ConversionAmountKey, amount),
		attribute.String(ConversionRateKey, rate),
	}
}

// RateAttributes creates rate-lookup span attributes.
func RateAttributes(base, source string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(BaseCurrencyKey, base),
		attribute.String(RateSourceKey, source),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
