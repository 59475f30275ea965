package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ulasanku/internal/domain/entity"
	"ulasanku/internal/domain/repository"
	"ulasanku/pkg/errors"
)

type firestoreUserRepository struct {
	client  *firestore.Client
	timeout time.Duration
}

func NewFirestoreUserRepository(client *firestore.Client, timeout time.Duration) repository.UserRepository {
	return &firestoreUserRepository{
		client:  client,
		timeout: timeout,
	}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, storeError("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}
