
// Package fuzztests houses Go fuzz harnesses that feed arbitrary bytes to
// the module decoders and the validator. Its goal is to smoke test
// robustness and guard against panics or hangs on hostile inputs.
//
// Назначение: запускать fuzz-обработчики, которые декодируют байты в модуль,
// валидируют его и проверяют инварианты кодека для принятых модулей.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/codec, internal/validate, internal/testkit.

package fuzztests
