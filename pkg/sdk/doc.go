// Package ufotracker is an in-process Go client for the UFO sighting search layer
// backed by Redis with the search module.
//
// The client exposes the same operations as the HTTP API without the transport:
//
//	client, _ := ufotracker.New(ctx,
//	    ufotracker.WithRedis("localhost:6379", ""),
//	    ufotracker.WithCatalog("ufotracker.db"),
//	)
//	defer client.Close()
//
//	res, _ := client.Search().Text(ctx, "luz forte", 0, 10)
//	near, _ := client.Search().Nearby(ctx, -22.9, -43.2, 50, 10)
//	stats, _ := client.Stats().Reliability(ctx)
//	ranking, _ := client.Weekly().Ranking(ctx, "2025-03-26")
//
// Sightings() is available only when a catalog is configured.
package ufotracker
