// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// スケジューラデーモンがtaskhubサービスのスキャンAPIを呼び出す際など、
// 内部のJSON API呼び出しパターンを統一する。
package httpclient
