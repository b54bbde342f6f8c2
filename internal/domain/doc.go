// Package domain contains the core business entities, value objects, and
// domain errors of the vocabulary review system. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
