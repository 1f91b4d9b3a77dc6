package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/repository"
	"github.com/kwatanabe/portfolio-api/internal/services"
	"gorm.io/gorm"
)

// A dataMigration is a one-shot transformation guarded by a persisted marker.
// Each runs in a single transaction that ends by writing its marker, so a
// failed run leaves no marker and is retried in full on the next startup.
// Migrations must therefore be safe to re-run from scratch, not just safe to
// skip.
type dataMigration struct {
	Key string
	Run func(tx *gorm.DB) error
}

var dataMigrations = []dataMigration{
	{Key: "people-dedup-constrain-v1", Run: dedupPeopleAndConstrain},
	{Key: "people-backfill-v1", Run: backfillEmbeddedPeople},
}

// RunDataMigrations executes all pending data migrations in declaration
// order. It must complete before the server accepts traffic; any failure is
// fatal to startup.
func RunDataMigrations(db *gorm.DB) error {
	for _, m := range dataMigrations {
		var count int64
		if err := db.Model(&models.MigrationMarker{}).
			Where("key = ?", m.Key).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration marker %s: %w", m.Key, err)
		}
		if count > 0 {
			continue
		}

		log.Printf("Running data migration %s...", m.Key)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&models.MigrationMarker{
				Key:       m.Key,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("data migration %s failed: %w", m.Key, err)
		}
		log.Printf("Data migration %s completed", m.Key)
	}
	return nil
}

// dedupPeopleAndConstrain collapses case-insensitive duplicate people and
// projects accumulated before uniqueness was enforced, then adds the unique
// indexes. Duplicate people are merged into the earliest record with every
// reference rewritten; duplicate projects are renamed with a numeric suffix,
// never deleted.
func dedupPeopleAndConstrain(tx *gorm.DB) error {
	people := repository.NewPersonRepository(tx)

	all, err := people.List()
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	byEmail := make(map[string]*models.Person)
	byName := make(map[string]*models.Person)
	for i := range all {
		person := &all[i]
		emailKey := strings.ToLower(person.EmailValue())
		nameKey := strings.ToLower(person.Name)

		var keeper *models.Person
		if emailKey != "" {
			keeper = byEmail[emailKey]
		}
		if keeper == nil {
			keeper = byName[nameKey]
		}
		if keeper == nil {
			byName[nameKey] = person
			if emailKey != "" {
				byEmail[emailKey] = person
			}
			continue
		}

		changed := false
		if keeper.Team == "" && person.Team != "" {
			keeper.Team = person.Team
			changed = true
		}
		if keeper.Email == nil && person.Email != nil {
			keeper.Email = person.Email
			byEmail[strings.ToLower(*person.Email)] = keeper
			changed = true
		}
		if changed {
			if err := people.Update(keeper); err != nil {
				return fmt.Errorf("failed to merge duplicate person: %w", err)
			}
		}
		if err := people.ReassignReferences(person.ID, keeper.ID); err != nil {
			return fmt.Errorf("failed to reassign references from %s: %w", person.ID, err)
		}
		if err := people.Delete(person.ID); err != nil {
			return fmt.Errorf("failed to delete duplicate person %s: %w", person.ID, err)
		}
	}

	if err := renameDuplicateProjects(tx); err != nil {
		return err
	}
	return createUniqueIndexes(tx)
}

// renameDuplicateProjects keeps the first project of each case-insensitive
// name group and renames the rest by appending a numeric suffix.
func renameDuplicateProjects(tx *gorm.DB) error {
	var projects []models.Project
	if err := tx.Order("created_at ASC, id ASC").Find(&projects).Error; err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	taken := make(map[string]struct{}, len(projects))
	for _, project := range projects {
		taken[strings.ToLower(project.Name)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(projects))
	for _, project := range projects {
		key := strings.ToLower(project.Name)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			continue
		}

		suffix := 2
		renamed := fmt.Sprintf("%s (%d)", project.Name, suffix)
		for {
			if _, used := taken[strings.ToLower(renamed)]; !used {
				break
			}
			suffix++
			renamed = fmt.Sprintf("%s (%d)", project.Name, suffix)
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("name", renamed).Error; err != nil {
			return fmt.Errorf("failed to rename duplicate project %s: %w", project.ID, err)
		}
		taken[strings.ToLower(renamed)] = struct{}{}
	}
	return nil
}

// ciIndexes are the case-insensitive uniqueness constraints the dedup
// migration installs once the data is clean.
var ciIndexes = []struct {
	name  string
	model interface{}
	table string
	expr  string
}{
	{"idx_people_name_ci", &models.Person{}, "people", "LOWER(name)"},
	{"idx_people_email_ci", &models.Person{}, "people", "LOWER(email)"},
	{"idx_projects_name_ci", &models.Project{}, "projects", "LOWER(name)"},
}

// createUniqueIndexes adds the unique indexes that are not already present.
// The existence check matters on mysql, where CREATE INDEX commits implicitly:
// a marker insert that fails afterward leaves the indexes behind, and the
// retried run must not trip over them. MySQL also needs the extra parentheses
// of a functional key part.
func createUniqueIndexes(tx *gorm.DB) error {
	functional := tx.Dialector.Name() == "mysql"
	for _, idx := range ciIndexes {
		if tx.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		expr := idx.expr
		if functional {
			expr = "(" + expr + ")"
		}
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s)", idx.name, idx.table, expr)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add unique index %s: %w", idx.name, err)
		}
	}
	return nil
}

// backfillEmbeddedPeople normalizes legacy embedded person data: projects'
// embedded stakeholder lists become proper links and free-text activity
// authors gain a canonical person reference. Clearing the embedded field as
// it goes makes the pass naturally idempotent, marker or not.
func backfillEmbeddedPeople(tx *gorm.DB) error {
	people := services.NewPersonService(tx)

	var projects []models.Project
	if err := tx.Preload("Stakeholders").Find(&projects).Error; err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	for i := range projects {
		project := &projects[i]
		if len(project.Legacy) == 0 {
			continue
		}

		linked := make(map[string]struct{}, len(project.Stakeholders))
		for _, stakeholder := range project.Stakeholders {
			linked[stakeholder.ID] = struct{}{}
		}

		for _, legacy := range project.Legacy {
			ref := services.PersonRef{
				ID:    legacy.ID,
				Name:  legacy.Name,
				Team:  legacy.Team,
				Email: legacy.Email,
			}
			person, err := people.Resolve(&ref)
			if err != nil {
				return fmt.Errorf("failed to resolve legacy stakeholder: %w", err)
			}
			if person == nil {
				continue
			}
			if _, ok := linked[person.ID]; ok {
				continue
			}
			if err := tx.Model(project).Association("Stakeholders").Append(person); err != nil {
				return fmt.Errorf("failed to link stakeholder: %w", err)
			}
			linked[person.ID] = struct{}{}
		}

		if err := tx.Model(project).Update("stakeholders_legacy", nil).Error; err != nil {
			return fmt.Errorf("failed to clear legacy stakeholders: %w", err)
		}
	}

	var activities []models.Activity
	if err := tx.Where("author_id IS NULL AND author <> ''").Find(&activities).Error; err != nil {
		return fmt.Errorf("failed to list unlinked activities: %w", err)
	}
	for i := range activities {
		activity := &activities[i]
		person, err := people.Resolve(services.NameRef(activity.Author))
		if err != nil {
			return fmt.Errorf("failed to resolve activity author: %w", err)
		}
		if person == nil {
			continue
		}
		if err := tx.Model(activity).Updates(map[string]interface{}{
			"author":    person.Name,
			"author_id": person.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to link activity author: %w", err)
		}
	}
	return nil
}
