package swagger

import _ "embed"

// rawDoc is the hand-maintained API description.
//
//go:embed docs/swagger.json
var rawDoc []byte
