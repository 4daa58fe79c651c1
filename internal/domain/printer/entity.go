package printer

import (
	"fmt"
	"time"
)

// Type はプリンターの機種区分を表す
type Type string

const (
	TypePowder Type = "Powder"
	TypeWire   Type = "Wire"
	TypeResin  Type = "Resin"
)

// Types は登録可能な機種区分の一覧
var Types = []Type{TypePowder, TypeWire, TypeResin}

// IsValid は既知の機種区分かを返す
func (t Type) IsValid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Printer は保守対象のプリンターを表す
// IDは外部（資産管理側）で採番されるため、作成時に必ず指定する
type Printer struct {
	ID                int
	Type              Type
	CommissioningDate time.Time
}

// New は新しいプリンターを作成する
func New(id int, t Type, commissioningDate time.Time) *Printer {
	return &Printer{
		ID:                id,
		Type:              t,
		CommissioningDate: commissioningDate,
	}
}

// Validate はプリンターの検証を行う
func (p *Printer) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidPrinterID
	}
	if !p.Type.IsValid() {
		return ErrUnknownPrinterType
	}
	if p.CommissioningDate.IsZero() {
		return ErrCommissioningDateRequired
	}
	return nil
}

// Label は機種区分とIDから導出される表示名を返す
func (p *Printer) Label() string {
	return fmt.Sprintf("%s #%d", p.Type, p.ID)
}
