// Package http implements the HTTP request handlers for the claim
// analytics service. It provides a thin layer between HTTP transport and
// business logic, keeping handlers focused solely on HTTP concerns.
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/model/not-trained",
//	    "title": "Model Not Trained",
//	    "status": 400,
//	    "detail": "The prediction model has not been trained yet.",
//	    "instance": "/api/claims/predict"
//	}
package http
