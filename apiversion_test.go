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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApiVersion(t *testing.T) {
	v, err := ParseApiVersion("1.3.0")
	require.NoError(t, err)
	assert.Equal(t, ApiVersion{Major: 1, Minor: 3, Patch: 0}, v)
	assert.Equal(t, "1.3.0", v.String())
}

func TestParseApiVersionWithExtra(t *testing.T) {
	v, err := ParseApiVersion("1.3.0-rc1")
	require.NoError(t, err)
	assert.Equal(t, "-rc1", v.Extra)
}

func TestParseApiVersionInvalid(t *testing.T) {
	_, err := ParseApiVersion("not-a-version")
	assert.Error(t, err)
}

func TestApiVersionLess(t *testing.T) {
	assert.True(t, ApiVersion{Major: 1, Minor: 2, Patch: 0}.Less(ApiVersion{Major: 1, Minor: 3, Patch: 0}))
	assert.False(t, ApiVersion{Major: 1, Minor: 3, Patch: 0}.Less(ApiVersion{Major: 1, Minor: 2, Patch: 0}))
	assert.True(t, ApiVersion{Major: 1, Minor: 3, Patch: 0}.Less(ApiVersion{Major: 2, Minor: 0, Patch: 0}))
}
