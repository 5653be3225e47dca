/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package finsy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")

	cases := []error{
		newConfigurationError("bad option: %w", cause),
		newSchemaError(cause),
		newEncodingError(cause),
		newRpcError(cause),
		newClientError(cause),
		newPipelineError("install failed: %w", cause),
		newStreamError(cause),
	}
	for _, err := range cases {
		assert.ErrorIs(t, err, cause)
		assert.NotEmpty(t, err.Error())
	}
}

func TestCancelledWrapsErr(t *testing.T) {
	cause := errors.New("context canceled")
	c := &Cancelled{Err: cause}
	assert.Equal(t, cause, c.Unwrap())
	assert.Contains(t, c.Error(), "cancelled")
}
