package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PersonRepositoryTestSuite verifies the SQL the repository issues, in
// particular that every identity lookup is case-insensitive at the database.
type PersonRepositoryTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo PersonRepository
}

// SetupTest runs before each test
func (suite *PersonRepositoryTestSuite) SetupTest() {
	conn, mock, err := sqlmock.New()
	suite.Require().NoError(err)
	suite.mock = mock

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	suite.Require().NoError(err)

	suite.repo = NewPersonRepository(db)
}

func (suite *PersonRepositoryTestSuite) TestFindByNameLowersBothSides() {
	rows := sqlmock.NewRows([]string{"id", "name", "team"}).
		AddRow("person-1", "Jamie Li", "Design")
	suite.mock.ExpectQuery(`SELECT \* FROM "people" WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("JAMIE LI", 1).
		WillReturnRows(rows)

	person, err := suite.repo.FindByName("JAMIE LI")
	suite.Require().NoError(err)
	suite.Equal("person-1", person.ID)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *PersonRepositoryTestSuite) TestFindByEmailSkipsNullEmails() {
	rows := sqlmock.NewRows([]string{"id", "name", "email"}).
		AddRow("person-1", "Jamie Li", "jamie@example.com")
	suite.mock.ExpectQuery(`SELECT \* FROM "people" WHERE email IS NOT NULL AND LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("jamie@example.com", 1).
		WillReturnRows(rows)

	person, err := suite.repo.FindByEmail("jamie@example.com")
	suite.Require().NoError(err)
	suite.Equal("person-1", person.ID)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *PersonRepositoryTestSuite) TestListOrdersByCreationThenID() {
	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("person-1", "Jamie Li").
		AddRow("person-2", "Sam Park")
	suite.mock.ExpectQuery(`SELECT \* FROM "people" ORDER BY created_at ASC, id ASC`).
		WillReturnRows(rows)

	people, err := suite.repo.List()
	suite.Require().NoError(err)
	suite.Len(people, 2)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *PersonRepositoryTestSuite) TestReassignReferencesRewritesEveryTable() {
	suite.mock.ExpectExec(`UPDATE "tasks" SET "assignee_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`UPDATE "subtasks" SET "assignee_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`UPDATE "activities" SET "author_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// conflicting stakeholder links are dropped before the rewrite
	suite.mock.ExpectExec(`DELETE FROM project_people WHERE person_id = \$1 AND project_id IN`).
		WithArgs("person-dup", "person-keep").
		WillReturnResult(sqlmock.NewResult(0, 1))
	suite.mock.ExpectExec(`UPDATE project_people SET person_id = \$1 WHERE person_id = \$2`).
		WithArgs("person-keep", "person-dup").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := suite.repo.ReassignReferences("person-dup", "person-keep")
	suite.Require().NoError(err)
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func TestPersonRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PersonRepositoryTestSuite))
}
