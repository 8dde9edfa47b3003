// Package bluelist provides the core of a REST gateway that serves CRUD
// over an Item resource and issues signed S3 upload policies.
//
// # Key Components
//
//   - Backend: per-request facade over a DocumentStore. Every call returns a
//     Future that settles once the store answers.
//   - DocumentStore: persistence contract implemented by the sqlite, postgres
//     and dynamodb packages under database/.
//   - PolicySigner: builds S3 POST policy documents that expire five minutes
//     after issue and signs them with HMAC-SHA1.
//
// # Example Usage
//
//	backend := bluelist.NewBackend(store)
//
//	rec, err := backend.Object(bluelist.ItemType, map[string]any{"name": "sensor1"}).
//	    Save(ctx).
//	    Await(ctx)
//
//	signer, err := bluelist.NewPolicySigner("uploads", accessKey, secrets)
//	signed, err := signer.Sign("photo.png")
//
// See the http package for the REST surface and the database package for
// store selection.
package bluelist
