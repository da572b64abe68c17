package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

func orgSlugKey(slug string) string {
	return "org:slug:" + slug
}

// CreateOrganization provisions a new tenant
func (s *Store) CreateOrganization(ctx context.Context, org *model.Organization) error {
	return s.db.WithContext(ctx).Create(org).Error
}

// GetOrganization returns an organization by id, or nil if it doesn't exist
func (s *Store) GetOrganization(ctx context.Context, id uint) (*model.Organization, error) {
	var org model.Organization
	err := s.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganizationBySlug resolves a tenant by its slug, consulting the cache
// first. Cache errors are ignored; the database is the source of truth.
func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var cached model.Organization
	if hit, err := s.cache.GetJSON(ctx, orgSlugKey(slug), &cached); err == nil && hit {
		return &cached, nil
	}

	var org model.Organization
	err := s.db.WithContext(ctx).First(&org, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, orgSlugKey(slug), &org)
	return &org, nil
}

// UpdateOrganization applies a partial update and invalidates the slug cache
func (s *Store) UpdateOrganization(ctx context.Context, id uint, updates map[string]interface{}) (*model.Organization, error) {
	org, err := s.GetOrganization(ctx, id)
	if err != nil || org == nil {
		return nil, err
	}

	oldSlug := org.Slug
	delete(updates, "id")

	if err := s.db.WithContext(ctx).Model(org).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update organization %d: %w", id, err)
	}

	// Map updates don't write back into the struct
	org, err = s.GetOrganization(ctx, id)
	if err != nil || org == nil {
		return nil, err
	}

	keys := []string{orgSlugKey(oldSlug)}
	if org.Slug != oldSlug {
		keys = append(keys, orgSlugKey(org.Slug))
	}
	_ = s.cache.Delete(ctx, keys...)

	return org, nil
}
