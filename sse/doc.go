// Package sse fans clinic notifications out to browser dashboards over
// Server-Sent Events.
//
// A Registry maps each tenant to the set of subscriber Channels currently
// connected for it. The Broker builds timestamped Events and pushes them to
// a tenant's channels without ever blocking: a full or closed channel is
// skipped and counted as dropped. Subscribe hands out a Subscription whose
// Close unregisters and closes its channel; it runs when the subscribing
// context ends and is safe to call any number of times.
//
//	broker := sse.NewBroker(sse.NewRegistry(), sse.WithLogger(log))
//	router.GET("/room/stream", func(c *gin.Context) {
//	    sse.ServeSSE(broker, c.Writer, c.Request, tenant)
//	})
//	broker.Publish(ctx, tenant, sse.EventRoomUpdate, room)
package sse
