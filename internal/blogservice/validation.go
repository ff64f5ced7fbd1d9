package blogservice

import "github.com/sushihentaime/blogsite/internal/common"

const maxQueryLength = 100

func validateQuery(v *common.Validator, value, name string) {
	v.Check(v.CheckStringLength(value, 0, maxQueryLength), name, "must not be more than 100 characters long")
}
