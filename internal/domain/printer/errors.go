package printer

import "errors"

// Printer ドメインのエラー定義
var (
	ErrPrinterNotFound           = errors.New("プリンターが見つかりません")
	ErrPrinterAlreadyExists      = errors.New("同じIDのプリンターが既に存在します")
	ErrInvalidPrinterID          = errors.New("プリンターIDは1以上である必要があります")
	ErrUnknownPrinterType        = errors.New("未知の機種区分です")
	ErrCommissioningDateRequired = errors.New("稼働開始日は必須です")
)
