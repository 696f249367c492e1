package model

import "time"

// Member is an identity record for a person who may hold a seat
// subscription. MemberID is the public business code shown on ID
// cards and QR stickers; it is minted once at creation from the
// monthly code counter and never changes afterwards.
//
// Fields:
//  ID        – primary key identifier.
//  MemberID  – unique code EVOLVE{yyyy}{mm}{seq3}, immutable.
//  Name      – full name of the member.
//  Email     – contact email.
//  Phone     – contact phone number.
//  Address   – postal address.
//  ExamPrep  – optional exam the member is preparing for.
type Member struct {
	ID        uint64    `json:"id"`         // members.id
	MemberID  string    `json:"member_id"`  // members.member_id
	Name      string    `json:"name"`       // members.name
	Email     string    `json:"email"`      // members.email
	Phone     string    `json:"phone"`      // members.phone
	Address   string    `json:"address"`    // members.address
	ExamPrep  string    `json:"exam_prep,omitempty"` // members.exam_prep (nullable)
	CreatedAt time.Time `json:"created_at"` // members.created_at
	UpdatedAt time.Time `json:"updated_at"` // members.updated_at
}
