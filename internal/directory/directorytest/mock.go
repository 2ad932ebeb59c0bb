// Package directorytest provides a testify mock of directory.Directory.
package directorytest

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Directory struct {
	mock.Mock
}

func (m *Directory) StaffExists(ctx context.Context, staffID string) (bool, error) {
	args := m.Called(ctx, staffID)
	return args.Bool(0), args.Error(1)
}

func (m *Directory) ClientExists(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *Directory) ServiceDuration(ctx context.Context, serviceID string) (int, error) {
	args := m.Called(ctx, serviceID)
	return args.Int(0), args.Error(1)
}

// Everyone returns a mock where every staff member and client exists.
func Everyone() *Directory {
	m := &Directory{}
	m.On("StaffExists", mock.Anything, mock.Anything).Return(true, nil).Maybe()
	m.On("ClientExists", mock.Anything, mock.Anything).Return(true, nil).Maybe()
	return m
}
