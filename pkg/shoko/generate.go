package shoko

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/mock_service.go github.com/kasuboski/shokoz/pkg/shoko Service
