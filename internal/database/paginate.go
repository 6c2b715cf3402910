package database

import "gorm.io/gorm"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	NextPage   int   `json:"next_page,omitempty"`
}

func (p Page) normalize() Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Paginate counts the rows matched by query and loads one page into dest.
func Paginate(query *gorm.DB, p Page, dest any) (PageMeta, error) {
	p = p.normalize()
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return PageMeta{}, err
	}

	offset := (p.Page - 1) * p.PageSize
	if err := query.Offset(offset).Limit(p.PageSize).Find(dest).Error; err != nil {
		return PageMeta{}, err
	}

	meta := PageMeta{Page: p.Page, PageSize: p.PageSize, TotalCount: total}
	if int64(p.Page*p.PageSize) < total {
		meta.NextPage = p.Page + 1
	}
	return meta, nil
}
