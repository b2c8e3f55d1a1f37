// Package loft provides types, interfaces, and helpers for working with the
// Loft IoT platform APIs.
//
// # Overview
//
// The loft package defines the domain types (Application, Device, Members,
// AccessToken) and the interfaces for the service clients (RegistryClient,
// AdminClient, TokensClient, UserClient, DiscoveryClient, CommandClient,
// EventsClient). A concrete implementation of these clients is provided by the
// loftclient package, which wires configuration, transport, authentication,
// and endpoint discovery. Most consumers should import loftclient to construct
// a client and then interact with the service client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/loft-iot/loft-client/pkg/loft"
//	  "github.com/loft-iot/loft-client/pkg/loftclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := loftclient.New(ctx, &loft.Config{APIEndpoint: "https://api.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  apps, err := cli.Registry().ListApplications(ctx, loft.NewListOptions().WithLabels("zone=eu1"))
//	  if err != nil { log.Fatal(err) }
//	  _ = apps
//	}
//
// # Sections and dialects
//
// Applications and devices carry free-form spec and status sections. Typed
// views over individual section entries are expressed as dialects: types
// implementing the Dialect interface, accessed through the generic SectionOf,
// SetSection, UpdateSection and ClearSection functions. The three lookup
// outcomes, absent, present but malformed, and decoded, are kept apart so
// callers can treat a broken section differently from a missing one:
//
//	downstream, present, err := loft.SectionOf[loft.DownstreamSpec](app)
//
// Attribute values derive a single fact from a dialect lookup, for example
// loft.DeviceEnabled.Of(device).
//
// # Errors
//
// API errors are represented by APIError and ErrorInformation. Helpers such
// as IsNotFound, IsUnauthorized, and IsForbidden make it easy to branch on
// common cases. Operations that fetch a single resource return nil without
// error when the resource does not exist.
package loft
