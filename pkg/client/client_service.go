package client

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type ClientService interface {
	Get(ctx context.Context, id int) (Client, error)
	GetAll(ctx context.Context, includeInactive bool) ([]Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client) (bool, error)
	SetStatus(ctx context.Context, id int, status ClientStatus) (bool, error)
}

type ClientServiceImpl struct {
	repo ClientRepo
}

func NewClientService(repo ClientRepo) *ClientServiceImpl {
	return &ClientServiceImpl{repo: repo}
}

func (s *ClientServiceImpl) Get(ctx context.Context, id int) (Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *ClientServiceImpl) GetAll(ctx context.Context, includeInactive bool) ([]Client, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

func (s *ClientServiceImpl) Create(ctx context.Context, client Client) (Client, error) {
	if client.LastName == "" {
		return Client{}, fmt.Errorf("client last name is required")
	}
	if client.Status == "" {
		client.Status = ClientStatusPending
	}
	if !client.Status.Valid() {
		return Client{}, fmt.Errorf("invalid client status: %s", client.Status)
	}

	id, err := s.repo.Store(ctx, client)
	if err != nil {
		return Client{}, err
	}
	client.ID = id
	return client, nil
}

func (s *ClientServiceImpl) Update(ctx context.Context, client Client) (bool, error) {
	updated, err := s.repo.Update(ctx, client)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("client not updated, probably because it does not exist (%d)", client.ID)
		return false, fmt.Errorf("client not updated")
	}
	return true, nil
}

func (s *ClientServiceImpl) SetStatus(ctx context.Context, id int, status ClientStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid client status: %s", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
