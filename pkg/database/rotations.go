package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a saved rotation does not exist
var ErrNotFound = errors.New("not found")

// Input decodes the stored configuration
func (r *SavedRotation) Input() (models.ScheduleInput, error) {
	var in models.ScheduleInput
	if err := json.Unmarshal([]byte(r.Body), &in); err != nil {
		return models.ScheduleInput{}, fmt.Errorf("failed to decode rotation %q: %w", r.Name, err)
	}
	return in, nil
}

// RotationRepository stores rotation configurations per API key
type RotationRepository struct {
	db *gorm.DB
}

func NewRotationRepository(db *gorm.DB) *RotationRepository {
	return &RotationRepository{db: db}
}

// Save creates or replaces the rotation called name for keyID
func (r *RotationRepository) Save(ctx context.Context, keyID uint, name string, in models.ScheduleInput) (*SavedRotation, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rotation: %w", err)
	}

	rotation := SavedRotation{
		ID:    uuid.NewString(),
		KeyID: keyID,
		Name:  name,
		Body:  string(body),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"body": rotation.Body, "updated_at": time.Now()}),
	}).Create(&rotation).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save rotation: %w", err)
	}

	// the row keeps its original id when it already existed
	return r.Load(ctx, keyID, name)
}

// Load returns the rotation called name for keyID
func (r *RotationRepository) Load(ctx context.Context, keyID uint, name string) (*SavedRotation, error) {
	var rotation SavedRotation
	err := r.db.WithContext(ctx).Where("key_id = ? AND name = ?", keyID, name).First(&rotation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rotation: %w", err)
	}
	return &rotation, nil
}

// List returns the rotations of keyID ordered by name
func (r *RotationRepository) List(ctx context.Context, keyID uint) ([]SavedRotation, error) {
	var rotations []SavedRotation
	if err := r.db.WithContext(ctx).Where("key_id = ?", keyID).Order("name").Find(&rotations).Error; err != nil {
		return nil, fmt.Errorf("failed to list rotations: %w", err)
	}
	return rotations, nil
}

// Delete removes the rotation called name for keyID
func (r *RotationRepository) Delete(ctx context.Context, keyID uint, name string) error {
	result := r.db.WithContext(ctx).Where("key_id = ? AND name = ?", keyID, name).Delete(&SavedRotation{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rotation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
