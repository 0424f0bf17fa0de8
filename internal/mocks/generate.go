package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Requester --dir ../usecase --output usecase --outpkg usecasemock --filename requester_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MockSource --dir ../usecase --output usecase --outpkg usecasemock --filename mock_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/preference --output domain/preference --outpkg preferencemock --filename store_mock.go
