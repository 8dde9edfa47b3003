// Package client provides a typed Go client for the bluelist gateway.
//
// # Basic Usage
//
//	c, err := client.New(&client.Config{
//		Endpoint:    "http://localhost:5000",
//		ContextRoot: "/v1/apps/bluelist",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	item, err := c.CreateItem(ctx, map[string]any{"name": "sensor1"})
//	item, err = c.GetItem(ctx, item.ID)
//
// # Errors
//
// Non-200 responses are returned as *APIError. Use errors.Is with the
// sentinel errors to check common conditions:
//
//	if errors.Is(err, client.ErrNotFound) {
//		// no such item
//	}
package client
