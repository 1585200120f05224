package sse

import (
	"context"
	"sync"

	"buildnchill-shop/internal/models"
)

const clientBuffer = 10

// ChangeEmitter fans table changes out to browser subscribers.
type ChangeEmitter struct {
	// key: table name, value: client channels
	clients     map[string][]chan models.Change
	clientMutex sync.RWMutex
}

func NewChangeEmitter() *ChangeEmitter {
	return &ChangeEmitter{clients: make(map[string][]chan models.Change)}
}

// Subscribe registers one channel for all the given tables. The channel is
// closed after ctx is done.
func (e *ChangeEmitter) Subscribe(ctx context.Context, tables []string) <-chan models.Change {
	clientChan := make(chan models.Change, clientBuffer)

	e.clientMutex.Lock()
	for _, table := range tables {
		e.clients[table] = append(e.clients[table], clientChan)
	}
	e.clientMutex.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(tables, clientChan)
	}()

	return clientChan
}

// Emit never blocks: a client with a full buffer misses the event.
func (e *ChangeEmitter) Emit(change models.Change) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	for _, clientChan := range e.clients[change.Table] {
		select {
		case clientChan <- change:
		default:
		}
	}
}

func (e *ChangeEmitter) remove(tables []string, clientChan chan models.Change) {
	e.clientMutex.Lock()
	defer e.clientMutex.Unlock()

	for _, table := range tables {
		clients := e.clients[table]
		for i, ch := range clients {
			if ch == clientChan {
				e.clients[table] = append(clients[:i], clients[i+1:]...)
				break
			}
		}
		if len(e.clients[table]) == 0 {
			delete(e.clients, table)
		}
	}
	close(clientChan)
}

// ClientCount returns the number of subscribers for a table.
func (e *ChangeEmitter) ClientCount(table string) int {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()
	return len(e.clients[table])
}
