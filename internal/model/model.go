package model

import (
	"time"
)

type User struct {
	ID       int    `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
	Email    string `json:"email" db:"email"`
	FullName string `json:"fullName" db:"full_name"`
	Role     string `json:"role" db:"role"`
}

type Kind string

const (
	KindBook      Kind = "BOOK"
	KindAudiobook Kind = "AUDIOBOOK"
	KindDVD       Kind = "DVD"
)

// ItemDescription is one catalog title. Kind-specific fields are nullable
// columns discriminated by Kind.
type ItemDescription struct {
	ID             int       `json:"-" db:"id"`
	DescriptionUid string    `json:"descriptionUid" db:"description_uid"`
	Name           string    `json:"name" db:"name"`
	Kind           Kind      `json:"kind" db:"kind"`
	Genre          string    `json:"genre" db:"genre"`
	Blurb          string    `json:"blurb" db:"blurb"`
	PublishDate    time.Time `json:"publishDate" db:"publish_date"`
	TotalCopies    int       `json:"totalCopies" db:"total_copies"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	Author         *string   `json:"author,omitempty" db:"author"`
	Publisher      *string   `json:"publisher,omitempty" db:"publisher"`
	Narrator       *string   `json:"narrator,omitempty" db:"narrator"`
	Producer       *string   `json:"producer,omitempty" db:"producer"`
	Director       *string   `json:"director,omitempty" db:"director"`
}

func (d *ItemDescription) Creator() string {
	return CreatorName(d.Kind, d.Author, d.Producer)
}

// CreatorName resolves the display "creator" of a title: books and
// audiobooks expose the author, DVDs the producer. An unrecognized kind or
// a missing value yields "Unknown" rather than failing.
func CreatorName(kind Kind, author, producer *string) string {
	switch kind {
	case KindBook, KindAudiobook:
		if author != nil && *author != "" {
			return *author
		}
	case KindDVD:
		if producer != nil && *producer != "" {
			return *producer
		}
	}
	return "Unknown"
}

// Item is one physical copy of a title.
type Item struct {
	ID            int  `json:"id" db:"id"`
	DescriptionID int  `json:"-" db:"description_id"`
	Available     bool `json:"available" db:"available"`
}

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
)

type Borrow struct {
	ID          int          `json:"-" db:"id"`
	BorrowUid   string       `json:"borrowUid" db:"borrow_uid"`
	BorrowerID  int          `json:"borrowerId" db:"borrower_id"`
	ItemID      int          `json:"itemId" db:"item_id"`
	RequestDate time.Time    `json:"requestDate" db:"request_date"`
	BorrowDate  time.Time    `json:"borrowDate" db:"borrow_date"`
	ReturnDate  time.Time    `json:"returnDate" db:"return_date"`
	ReturnedOn  *time.Time   `json:"returnedOn,omitempty" db:"returned_on"`
	Status      BorrowStatus `json:"status" db:"status"`
	Notes       string       `json:"notes" db:"notes"`
}

type Fine struct {
	ID         int       `json:"id" db:"id"`
	BorrowID   int       `json:"borrowId" db:"borrow_id"`
	BorrowerID int       `json:"borrowerId" db:"borrower_id"`
	Amount     int64     `json:"amount" db:"amount"`
	IssuedDate time.Time `json:"issuedDate" db:"issued_date"`
	Paid       bool      `json:"paid" db:"paid"`
}

type LoanEventRecord struct {
	ID         int       `json:"id" db:"id"`
	EventType  string    `json:"eventType" db:"event_type"`
	BorrowUid  string    `json:"borrowUid" db:"borrow_uid"`
	Username   string    `json:"username" db:"username"`
	ItemName   string    `json:"itemName" db:"item_name"`
	OccurredAt time.Time `json:"occurredAt" db:"occurred_at"`
}

// BorrowDetail is the flattened borrow + item + title + borrower row used
// to build summaries.
type BorrowDetail struct {
	ID          int          `db:"id"`
	BorrowUid   string       `db:"borrow_uid"`
	RequestDate time.Time    `db:"request_date"`
	BorrowDate  time.Time    `db:"borrow_date"`
	ReturnDate  time.Time    `db:"return_date"`
	ReturnedOn  *time.Time   `db:"returned_on"`
	Status      BorrowStatus `db:"status"`
	Notes       string       `db:"notes"`
	ItemID      int          `db:"item_id"`
	Kind        Kind         `db:"kind"`
	ItemName    string       `db:"item_name"`
	Author      *string      `db:"author"`
	Producer    *string      `db:"producer"`
	BorrowerID  int          `db:"borrower_id"`
	FullName    string       `db:"full_name"`
	Email       string       `db:"email"`
}

func (d *BorrowDetail) ToSummary() BorrowSummary {
	return BorrowSummary{
		ID: d.BorrowUid,
		Borrower: BorrowerInfo{
			ID:       d.BorrowerID,
			FullName: d.FullName,
			Email:    d.Email,
		},
		Item: ItemInfo{
			ID:      d.ItemID,
			Type:    kindDisplay(d.Kind),
			Name:    d.ItemName,
			Creator: CreatorName(d.Kind, d.Author, d.Producer),
		},
		RequestDate: d.RequestDate,
		BorrowDate:  d.BorrowDate,
		ReturnDate:  d.ReturnDate,
		ReturnedOn:  d.ReturnedOn,
		Status:      d.Status,
		Notes:       d.Notes,
	}
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type FineView struct {
	FineID       int    `json:"fineId" db:"id"`
	BorrowerName string `json:"borrowerName" db:"borrower_name"`
	ItemName     string `json:"itemName" db:"item_name"`
	Amount       int64  `json:"amount" db:"amount"`
	Paid         bool   `json:"paid" db:"paid"`
}
