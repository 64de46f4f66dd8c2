// Package template defines the template rendering seam used by the page views.
// Concrete engines live in subpackages.
package template
