package database

type ItemRepository interface {
	ExistsItem(id int64) (bool, error)
	AppendItems(items []Item) error
	AppendChildren(children []ChildRef) error
	UpdateImages(images map[int64]*string) error

	GetItems(limit int) ([]Item, error)
	GetItemCount() (int, error)
	GetItemsMissingImage() ([]Item, error)
	GetItemsWithImage() ([]Item, error)

	ResetCache() error
}

type TagRepository interface {
	UpsertTag(description string) (int64, error)
	TagItem(itemID, tagID int64) error
	GetTags() ([]Tag, error)
	GetItemTags(itemID int64) ([]Tag, error)
}

type ErrorRepository interface {
	AppendErrors(records []ErrorRecord) error
	GetErrors(limit int) ([]ErrorRecord, error)
	GetErrorCount() (int, error)
}
