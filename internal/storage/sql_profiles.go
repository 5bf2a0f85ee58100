package storage

import (
	"context"
	"fmt"

	"github.com/xaenox/kindred/internal/models"
)

func (s *SQLStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, status, onboarding_completed, created_at, last_active_at
		FROM users
		WHERE id = ?`

	u := &models.User{}
	err := s.queryRow(ctx, query, id).Scan(&u.ID, &u.Status, &u.OnboardingCompleted, &u.CreatedAt, &u.LastActiveAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *SQLStorage) SaveUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, status, onboarding_completed, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			onboarding_completed = excluded.onboarding_completed,
			last_active_at = excluded.last_active_at`

	_, err := s.exec(ctx, query, user.ID, user.Status, user.OnboardingCompleted, utc(user.CreatedAt), utc(user.LastActiveAt))
	if err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

const profileColumns = `id, user_id, first_name, display_name, birth_date, gender, gender_preferences,
	city, state, country, bio, height, relationship_intent, top_values, lifestyle, dealbreakers,
	strength, created_at, updated_at`

func scanProfile(row scanner) (*models.Profile, error) {
	p := &models.Profile{}
	var prefs, values, lifestyle, dealbreakers, strength string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.DisplayName,
		&p.BirthDate,
		&p.Gender,
		&prefs,
		&p.City,
		&p.State,
		&p.Country,
		&p.Bio,
		&p.Height,
		&p.RelationshipIntent,
		&values,
		&lifestyle,
		&dealbreakers,
		&strength,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		data string
		dest any
	}{
		{prefs, &p.GenderPreferences},
		{values, &p.Values},
		{lifestyle, &p.Lifestyle},
		{dealbreakers, &p.Dealbreakers},
		{strength, &p.Strength},
	} {
		if err := decodeJSON(col.data, col.dest); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// profileArgs encodes the mutable profile columns in profileColumns order,
// skipping id, user_id, strength and timestamps.
func profileArgs(p *models.Profile) ([]any, error) {
	prefs, err := encodeJSON(p.GenderPreferences)
	if err != nil {
		return nil, err
	}
	values, err := encodeJSON(p.Values)
	if err != nil {
		return nil, err
	}
	lifestyle, err := encodeJSON(p.Lifestyle)
	if err != nil {
		return nil, err
	}
	dealbreakers, err := encodeJSON(p.Dealbreakers)
	if err != nil {
		return nil, err
	}
	return []any{
		p.FirstName, p.DisplayName, utc(p.BirthDate), p.Gender, prefs,
		p.City, p.State, p.Country, p.Bio, p.Height, p.RelationshipIntent,
		values, lifestyle, dealbreakers,
	}, nil
}

func (s *SQLStorage) CreateProfile(ctx context.Context, profile *models.Profile) error {
	fields, err := profileArgs(profile)
	if err != nil {
		return err
	}
	strength, err := encodeJSON(profile.Strength)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (id, user_id, first_name, display_name, birth_date, gender, gender_preferences,
			city, state, country, bio, height, relationship_intent, top_values, lifestyle, dealbreakers,
			strength_overall, strength, created_at, updated_at)
		VALUES (` + placeholders(20) + `)`

	args := append([]any{profile.ID, profile.UserID}, fields...)
	args = append(args, profile.Strength.Overall, strength, utc(profile.CreatedAt), utc(profile.UpdatedAt))

	if err := s.insert(ctx, query, args...); err != nil {
		if err == ErrDuplicate {
			return err
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

func (s *SQLStorage) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`

	p, err := scanProfile(s.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *SQLStorage) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ?`

	p, err := scanProfile(s.queryRow(ctx, query, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *SQLStorage) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	fields, err := profileArgs(profile)
	if err != nil {
		return err
	}

	query := `
		UPDATE profiles SET
			first_name = ?, display_name = ?, birth_date = ?, gender = ?, gender_preferences = ?,
			city = ?, state = ?, country = ?, bio = ?, height = ?, relationship_intent = ?,
			top_values = ?, lifestyle = ?, dealbreakers = ?, updated_at = ?
		WHERE id = ?`

	args := append(fields, utc(profile.UpdatedAt), profile.ID)
	if err := s.execOne(ctx, query, args...); err != nil {
		if err == ErrNotFound {
			return err
		}
		return fmt.Errorf("error updating profile: %w", err)
	}
	return nil
}

func (s *SQLStorage) SaveProfileStrength(ctx context.Context, profileID string, strength models.ProfileStrength) error {
	data, err := encodeJSON(strength)
	if err != nil {
		return err
	}

	query := `UPDATE profiles SET strength_overall = ?, strength = ? WHERE id = ?`
	if err := s.execOne(ctx, query, strength.Overall, data, profileID); err != nil {
		if err == ErrNotFound {
			return err
		}
		return fmt.Errorf("error saving profile strength: %w", err)
	}
	return nil
}

func (s *SQLStorage) ListProfiles(ctx context.Context, filter ProfileFilter) ([]*models.Profile, error) {
	query := `
		SELECT ` + profileColumnsPrefixed + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE u.status = ? AND u.onboarding_completed = ?`
	args := []any{models.UserActive, true}

	if n := len(filter.ExcludeUserIDs); n > 0 {
		query += ` AND p.user_id NOT IN (` + placeholders(n) + `)`
		for _, id := range filter.ExcludeUserIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY p.strength_overall DESC, p.id ASC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

const profileColumnsPrefixed = `p.id, p.user_id, p.first_name, p.display_name, p.birth_date, p.gender,
	p.gender_preferences, p.city, p.state, p.country, p.bio, p.height, p.relationship_intent,
	p.top_values, p.lifestyle, p.dealbreakers, p.strength, p.created_at, p.updated_at`

func (s *SQLStorage) ListPhotos(ctx context.Context, profileID string) ([]models.Photo, error) {
	query := `
		SELECT id, profile_id, url, is_main, position, created_at
		FROM photos
		WHERE profile_id = ?
		ORDER BY position, created_at`

	rows, err := s.query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("error querying photos: %w", err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var ph models.Photo
		if err := rows.Scan(&ph.ID, &ph.ProfileID, &ph.URL, &ph.IsMain, &ph.Order, &ph.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning photo: %w", err)
		}
		photos = append(photos, ph)
	}
	return photos, rows.Err()
}

func (s *SQLStorage) AddPhoto(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, profile_id, url, is_main, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	err := s.insert(ctx, query, photo.ID, photo.ProfileID, photo.URL, photo.IsMain, photo.Order, utc(photo.CreatedAt))
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error adding photo: %w", err)
	}
	return err
}

func (s *SQLStorage) ClearMainPhoto(ctx context.Context, profileID string) error {
	_, err := s.exec(ctx, `UPDATE photos SET is_main = ? WHERE profile_id = ?`, false, profileID)
	if err != nil {
		return fmt.Errorf("error clearing main photo: %w", err)
	}
	return nil
}

func (s *SQLStorage) DeletePhoto(ctx context.Context, profileID, photoID string) error {
	err := s.execOne(ctx, `DELETE FROM photos WHERE id = ? AND profile_id = ?`, photoID, profileID)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("error deleting photo: %w", err)
	}
	return err
}

func (s *SQLStorage) ListPrompts(ctx context.Context, profileID string) ([]models.Prompt, error) {
	query := `
		SELECT id, profile_id, question, answer, position, created_at
		FROM prompts
		WHERE profile_id = ?
		ORDER BY position, created_at`

	rows, err := s.query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("error querying prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.Prompt{}
	for rows.Next() {
		var pr models.Prompt
		if err := rows.Scan(&pr.ID, &pr.ProfileID, &pr.Question, &pr.Answer, &pr.Order, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning prompt: %w", err)
		}
		prompts = append(prompts, pr)
	}
	return prompts, rows.Err()
}

func (s *SQLStorage) AddPrompt(ctx context.Context, prompt *models.Prompt) error {
	query := `
		INSERT INTO prompts (id, profile_id, question, answer, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	err := s.insert(ctx, query, prompt.ID, prompt.ProfileID, prompt.Question, prompt.Answer, prompt.Order, utc(prompt.CreatedAt))
	if err != nil && err != ErrDuplicate {
		return fmt.Errorf("error adding prompt: %w", err)
	}
	return err
}
