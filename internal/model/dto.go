package model

import (
	"strings"
	"time"
)

// Date is a calendar date ("2006-01-02") in JSON payloads.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

type UserCreateRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=BORROWER LIBRARIAN"`
}

type AuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type CreateDescriptionRequest struct {
	Name        string  `json:"name" validate:"required"`
	Kind        Kind    `json:"kind" validate:"required,oneof=BOOK AUDIOBOOK DVD"`
	Genre       string  `json:"genre"`
	Blurb       string  `json:"blurb"`
	PublishDate Date    `json:"publishDate"`
	TotalCopies int     `json:"totalCopies" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl"`
	Author      *string `json:"author,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	Narrator    *string `json:"narrator,omitempty"`
	Producer    *string `json:"producer,omitempty"`
	Director    *string `json:"director,omitempty"`
}

type SubmitBorrowRequest struct {
	BorrowerID     int    `json:"borrowerId" validate:"required"`
	DescriptionUid string `json:"descriptionId" validate:"required,uuid"`
	BorrowDate     Date   `json:"borrowDate" validate:"required"`
	ReturnDate     *Date  `json:"returnDate,omitempty"`
	Notes          string `json:"notes"`
}

type ReturnRequest struct {
	BorrowUid string `json:"borrowId" validate:"required,uuid"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BorrowerInfo struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type ItemInfo struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Creator string `json:"creator"`
}

type BorrowSummary struct {
	ID          string       `json:"id"`
	Borrower    BorrowerInfo `json:"borrower"`
	Item        ItemInfo     `json:"item"`
	RequestDate time.Time    `json:"requestDate"`
	BorrowDate  time.Time    `json:"borrowDate"`
	ReturnDate  time.Time    `json:"returnDate"`
	ReturnedOn  *time.Time   `json:"returnedOn,omitempty"`
	Status      BorrowStatus `json:"status"`
	Notes       string       `json:"notes,omitempty"`
}

func kindDisplay(k Kind) string {
	return strings.ToLower(string(k))
}
