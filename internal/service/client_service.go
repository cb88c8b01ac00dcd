package service

import (
	"context"
	"fmt"

	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/socket"
)

// ClientFields carries the writable client fields. Nil means absent.
type ClientFields struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

type ClientService interface {
	List(ctx context.Context) ([]*repository.Client, error)
	Get(ctx context.Context, id string) (*repository.Client, error)
	Create(ctx context.Context, fields ClientFields) (*repository.Client, error)
	Update(ctx context.Context, id string, fields ClientFields) (*repository.Client, error)
	Delete(ctx context.Context, id string) error
}

type clientService struct {
	repo      repository.ClientRepository
	publisher EventPublisher
}

func NewClientService(repo repository.ClientRepository, publisher EventPublisher) ClientService {
	return &clientService{repo: repo, publisher: publisher}
}

func (s *clientService) List(ctx context.Context) ([]*repository.Client, error) {
	clients, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) Get(ctx context.Context, id string) (*repository.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, ErrNotFound
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, f ClientFields) (*repository.Client, error) {
	v := violations{}
	v.require("name", deref(f.Name))
	v.require("phone", deref(f.Phone))
	checkClient(v, f)
	if err := v.err(); err != nil {
		return nil, err
	}

	client := &repository.Client{
		Name:    deref(trimmed(f.Name)),
		Email:   optional(f.Email),
		Phone:   deref(trimmed(f.Phone)),
		Address: optional(f.Address),
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, storageError("failed to create client", err)
	}

	s.publisher.Publish(socket.EntityClient, socket.ActionCreated, client.ID, nil)
	return client, nil
}

func (s *clientService) Update(ctx context.Context, id string, f ClientFields) (*repository.Client, error) {
	v := violations{}
	if f.Name != nil {
		v.require("name", *f.Name)
	}
	if f.Phone != nil {
		v.require("phone", *f.Phone)
	}
	checkClient(v, f)
	if err := v.err(); err != nil {
		return nil, err
	}

	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.Name != nil {
		client.Name = deref(trimmed(f.Name))
	}
	if f.Email != nil {
		client.Email = optional(f.Email)
	}
	if f.Phone != nil {
		client.Phone = deref(trimmed(f.Phone))
	}
	if f.Address != nil {
		client.Address = optional(f.Address)
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, storageError("failed to update client", err)
	}

	s.publisher.Publish(socket.EntityClient, socket.ActionUpdated, client.ID, nil)
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError("failed to delete client", err)
	}
	s.publisher.Publish(socket.EntityClient, socket.ActionDeleted, id, nil)
	return nil
}

func checkClient(v violations, f ClientFields) {
	if email := optional(f.Email); email != nil && !isEmail(*email) {
		v["email"] = "must be a valid email"
	}
}
