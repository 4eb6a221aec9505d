package sse

import (
	"context"
	"sync"

	"ms-transactions/internal/models"
)

// TransactionEventEmitter fans transaction status events out to SSE clients
type TransactionEventEmitter struct {
	// key: organizerID
	orgClients     map[string][]chan models.TransactionStatusEvent
	orgClientMutex sync.RWMutex

	// key: eventID
	eventClients     map[string][]chan models.TransactionStatusEvent
	eventClientMutex sync.RWMutex
}

func NewTransactionEventEmitter() *TransactionEventEmitter {
	return &TransactionEventEmitter{
		orgClients:   make(map[string][]chan models.TransactionStatusEvent),
		eventClients: make(map[string][]chan models.TransactionStatusEvent),
	}
}

// SubscribeToOrganizer adds a client for every event of an organizer
func (e *TransactionEventEmitter) SubscribeToOrganizer(ctx context.Context, organizerID string) <-chan models.TransactionStatusEvent {
	clientChan := make(chan models.TransactionStatusEvent, 10)

	e.orgClientMutex.Lock()
	e.orgClients[organizerID] = append(e.orgClients[organizerID], clientChan)
	e.orgClientMutex.Unlock()

	// Remove client when context is done
	go func() {
		<-ctx.Done()
		e.removeClient(&e.orgClientMutex, e.orgClients, organizerID, clientChan)
	}()

	return clientChan
}

// SubscribeToEvent adds a client for a single event
func (e *TransactionEventEmitter) SubscribeToEvent(ctx context.Context, eventID string) <-chan models.TransactionStatusEvent {
	clientChan := make(chan models.TransactionStatusEvent, 10)

	e.eventClientMutex.Lock()
	e.eventClients[eventID] = append(e.eventClients[eventID], clientChan)
	e.eventClientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.removeClient(&e.eventClientMutex, e.eventClients, eventID, clientChan)
	}()

	return clientChan
}

func (e *TransactionEventEmitter) Name() string { return "sse" }

// Notify broadcasts evt. Organizer streams never carry the customer's email.
func (e *TransactionEventEmitter) Notify(_ context.Context, evt models.TransactionStatusEvent) error {
	evt.CustomerEmail = ""

	e.orgClientMutex.RLock()
	broadcast(e.orgClients[evt.OrganizerID], evt)
	e.orgClientMutex.RUnlock()

	e.eventClientMutex.RLock()
	broadcast(e.eventClients[evt.EventID], evt)
	e.eventClientMutex.RUnlock()

	return nil
}

// broadcast never blocks; a client with a full buffer misses the event.
func broadcast(clients []chan models.TransactionStatusEvent, evt models.TransactionStatusEvent) {
	for _, clientChan := range clients {
		select {
		case clientChan <- evt:
		default:
		}
	}
}

func (e *TransactionEventEmitter) removeClient(mu *sync.RWMutex, clients map[string][]chan models.TransactionStatusEvent, key string, clientChan chan models.TransactionStatusEvent) {
	mu.Lock()
	defer mu.Unlock()

	list := clients[key]
	for i, ch := range list {
		if ch == clientChan {
			clients[key] = append(list[:i], list[i+1:]...)
			close(clientChan)
			break
		}
	}

	// Clean up map entry if no more clients
	if len(clients[key]) == 0 {
		delete(clients, key)
	}
}

// OrganizerClientCount returns the number of clients subscribed to an organizer
func (e *TransactionEventEmitter) OrganizerClientCount(organizerID string) int {
	e.orgClientMutex.RLock()
	defer e.orgClientMutex.RUnlock()
	return len(e.orgClients[organizerID])
}

// EventClientCount returns the number of clients subscribed to an event
func (e *TransactionEventEmitter) EventClientCount(eventID string) int {
	e.eventClientMutex.RLock()
	defer e.eventClientMutex.RUnlock()
	return len(e.eventClients[eventID])
}
