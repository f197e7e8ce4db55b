package client

import (
	"context"
	"sort"
)

type StubClientRepo struct {
	nextId int
	data   map[int]Client
}

func NewStubClientRepo() *StubClientRepo {
	return &StubClientRepo{data: map[int]Client{}}
}

func (s *StubClientRepo) Store(ctx context.Context, client Client) (int, error) {
	s.nextId++
	client.ID = s.nextId
	s.data[client.ID] = client
	return client.ID, nil
}

func (s *StubClientRepo) Get(ctx context.Context, id int) (Client, error) {
	client, ok := s.data[id]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (s *StubClientRepo) GetAll(ctx context.Context, includeInactive bool) ([]Client, error) {
	clients := make([]Client, 0, len(s.data))
	for _, client := range s.data {
		if client.Status != ClientStatusInactive || includeInactive {
			clients = append(clients, client)
		}
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
	return clients, nil
}

func (s *StubClientRepo) Update(ctx context.Context, client Client) (bool, error) {
	existing, ok := s.data[client.ID]
	if !ok {
		return false, nil
	}
	client.Status = existing.Status
	client.CreatedAt = existing.CreatedAt
	s.data[client.ID] = client
	return true, nil
}

func (s *StubClientRepo) UpdateStatus(ctx context.Context, id int, status ClientStatus) (bool, error) {
	client, ok := s.data[id]
	if !ok {
		return false, nil
	}
	client.Status = status
	s.data[id] = client
	return true, nil
}
