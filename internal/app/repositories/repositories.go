package repositories

import (
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	RoleRepository        *RoleRepository
	StudentRepository     *StudentRepository
	ApplicationRepository *ApplicationRepository
	DocumentRepository    *DocumentRepository
	Lookups               *LookupRegistry
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		RoleRepository:        NewRoleRepository(db),
		StudentRepository:     NewStudentRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		DocumentRepository:    NewDocumentRepository(db),
		Lookups:               NewLookupRegistry(db, Definitions()...),
	}
}

// builder returns the squirrel builder every repository uses
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
