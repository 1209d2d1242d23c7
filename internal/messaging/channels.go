// Package messaging names the logical channels orders move through. Each
// channel maps to one kafka topic.
package messaging

const (
	// ChannelOrderCreated carries newly submitted orders to the collector.
	ChannelOrderCreated = "orders.created"
	// ChannelReservation carries collected orders to the reservation engine.
	ChannelReservation = "orders.reservation"
	// ChannelFulfillment carries fully reserved orders downstream.
	ChannelFulfillment = "orders.fulfillment"
	// ChannelFailure carries canceled orders to the notification path.
	ChannelFailure = "orders.failure"
)
